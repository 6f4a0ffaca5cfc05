// Package directory loads the on-call user directory.
//
// The directory is an INI file with one section per user id, each carrying
// the contact attributes used by the status page and the paging directory:
//
//	[alice]
//	name  = Alice Anderson
//	phone = +49 170 0000001
//	email = alice@example.com
package directory

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// ErrUnknownUser is returned when a looked-up user id has no directory entry.
var ErrUnknownUser = errors.New("directory: unknown user")

// User is one contact record from the directory.
type User struct {
	ID    string
	Name  string
	Phone string
	Email string
}

// Directory is an immutable snapshot of the user directory file.
type Directory struct {
	users map[string]User
}

// Load reads and validates the directory file. Every section must provide
// name, phone and email; a missing attribute fails the whole load rather
// than yielding a partially usable directory.
func Load(path string) (*Directory, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("directory: load %s: %w", path, err)
	}

	users := make(map[string]User)
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		id := strings.TrimSpace(section.Name())
		user := User{
			ID:    id,
			Name:  strings.TrimSpace(section.Key("name").String()),
			Phone: strings.TrimSpace(section.Key("phone").String()),
			Email: strings.TrimSpace(section.Key("email").String()),
		}
		if user.Name == "" || user.Phone == "" || user.Email == "" {
			return nil, fmt.Errorf("directory: user %q in %s is missing name, phone or email", id, path)
		}
		users[id] = user
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("directory: no users defined in %s", path)
	}

	return &Directory{users: users}, nil
}

// Lookup returns the contact record for id.
func (d *Directory) Lookup(id string) (User, error) {
	user, ok := d.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUnknownUser, id)
	}
	return user, nil
}

// Contains reports whether id has a directory entry.
func (d *Directory) Contains(id string) bool {
	_, ok := d.users[id]
	return ok
}

// UserIDs returns all known user ids in lexical order, for diagnostics.
func (d *Directory) UserIDs() []string {
	ids := make([]string, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
