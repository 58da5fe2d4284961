package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/keymap"
)

// Keymap is a named keymap profile.
type Keymap struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Labels       []string  `json:"labels"`
	Shortcuts    []string  `json:"shortcuts"`
	MouseActions []string  `json:"mouse_actions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromKeymap copies the lists of km into a new profile called name.
func FromKeymap(name string, km *keymap.Keymap) *Keymap {
	return &Keymap{
		Name:         name,
		Labels:       km.Labels,
		Shortcuts:    km.Shortcuts,
		MouseActions: km.MouseActions,
	}
}

// Keymap builds the bindings of the profile.
func (k *Keymap) Keymap() (*keymap.Keymap, error) {
	return keymap.New(k.Labels, k.Shortcuts, k.MouseActions)
}

// KeymapRepository provides CRUD operations for keymap profiles.
type KeymapRepository struct {
	db *sql.DB
}

// Keymaps returns the keymap repository for this store.
func (s *Store) Keymaps() *KeymapRepository {
	return &KeymapRepository{db: s.db}
}

const keymapColumns = `id, name, labels, shortcuts, mouse_actions, created_at, updated_at`

// Create inserts a new profile. An empty ID is filled with a new UUID.
func (r *KeymapRepository) Create(k *Keymap) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	now := time.Now()
	k.CreatedAt = now
	k.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO keymaps (`+keymapColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.Name, keymap.Join(k.Labels), keymap.Join(k.Shortcuts), keymap.Join(k.MouseActions),
		k.CreatedAt, k.UpdatedAt,
	)
	return uniqueErr(err)
}

// GetByID retrieves a profile by its ID.
func (r *KeymapRepository) GetByID(id string) (*Keymap, error) {
	return r.get(`SELECT `+keymapColumns+` FROM keymaps WHERE id = ?`, id)
}

// GetByName retrieves a profile by its name.
func (r *KeymapRepository) GetByName(name string) (*Keymap, error) {
	return r.get(`SELECT `+keymapColumns+` FROM keymaps WHERE name = ?`, name)
}

// Resolve retrieves a profile by ID, falling back to its name.
func (r *KeymapRepository) Resolve(ref string) (*Keymap, error) {
	k, err := r.GetByID(ref)
	if errors.Is(err, ErrNotFound) {
		return r.GetByName(ref)
	}
	return k, err
}

func (r *KeymapRepository) get(query string, arg string) (*Keymap, error) {
	k, err := scanKeymap(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return k, nil
}

// List retrieves all profiles ordered by name.
func (r *KeymapRepository) List() ([]*Keymap, error) {
	rows, err := r.db.Query(`SELECT ` + keymapColumns + ` FROM keymaps ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keymaps []*Keymap
	for rows.Next() {
		k, err := scanKeymap(rows)
		if err != nil {
			return nil, err
		}
		keymaps = append(keymaps, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keymaps, nil
}

// Update replaces the name and lists of an existing profile.
func (r *KeymapRepository) Update(k *Keymap) error {
	k.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE keymaps SET name = ?, labels = ?, shortcuts = ?, mouse_actions = ?, updated_at = ?
		 WHERE id = ?`,
		k.Name, keymap.Join(k.Labels), keymap.Join(k.Shortcuts), keymap.Join(k.MouseActions),
		k.UpdatedAt, k.ID,
	)
	if err != nil {
		return uniqueErr(err)
	}
	return affected(result)
}

// Delete removes a profile by its ID.
func (r *KeymapRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM keymaps WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKeymap(row scanner) (*Keymap, error) {
	k := &Keymap{}
	var labels, shortcuts, mouse string
	if err := row.Scan(&k.ID, &k.Name, &labels, &shortcuts, &mouse, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	k.Labels = keymap.Split(labels)
	k.Shortcuts = keymap.Split(shortcuts)
	if mouse != "" {
		k.MouseActions = keymap.Split(mouse)
	}
	return k, nil
}

func uniqueErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}
