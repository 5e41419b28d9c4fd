// Package books discovers books on the filesystem.
//
// Every sub-directory of the store root is a book. Its pages are the image
// files directly inside it, sorted by name, numbered from 0. An optional
// book.yaml in the directory overrides the id, the name and the page list:
//
//	id: 12
//	name: Chronicle of 1542
//	pages:
//	  - scans/0001.tif
//	  - scans/0002.tif
//
// Manifest pages are paths relative to the book directory and need not
// exist yet. Books without a manifest id take their position in the sorted
// directory list.
package books

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/layout-tools-mcp/internal/model"
)

// ManifestName is the file name of the optional book manifest.
const ManifestName = "book.yaml"

// ErrBookNotFound is returned for an unknown book id.
var ErrBookNotFound = errors.New("book not found")

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

// Entry is a discovered book and the directory its page paths are
// relative to.
type Entry struct {
	Book *model.Book
	Dir  string
}

type manifest struct {
	ID    *int     `yaml:"id"`
	Name  string   `yaml:"name"`
	Pages []string `yaml:"pages"`
}

// Store reads books below a root directory. It holds no state; every call
// rescans the filesystem.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// List returns all books ordered by id.
//
// # Errors
//
//   - Returns an error if the root cannot be read
//   - Returns an error for a malformed manifest or duplicate book ids
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read book store: %w", err)
	}

	var dirs []string
	for _, de := range dirEntries {
		if de.IsDir() && !strings.HasPrefix(de.Name(), ".") {
			dirs = append(dirs, de.Name())
		}
	}
	sort.Strings(dirs)

	entries := make([]Entry, 0, len(dirs))
	seen := make(map[int]string, len(dirs))
	for i, name := range dirs {
		dir := filepath.Join(s.root, name)
		book, err := readBook(dir, name, i)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[book.ID]; dup {
			return nil, fmt.Errorf("books %q and %q share id %d", other, name, book.ID)
		}
		seen[book.ID] = name
		entries = append(entries, Entry{Book: book, Dir: dir})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Book.ID < entries[j].Book.ID
	})
	return entries, nil
}

// Get returns the book with the given id.
func (s *Store) Get(id int) (Entry, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Book.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %d", ErrBookNotFound, id)
}

func readBook(dir, name string, index int) (*model.Book, error) {
	m, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	book := &model.Book{ID: index, Name: name}
	if m.ID != nil {
		book.ID = *m.ID
	}
	if m.Name != "" {
		book.Name = m.Name
	}

	images := m.Pages
	if len(images) == 0 {
		if images, err = scanImages(dir); err != nil {
			return nil, err
		}
	}

	book.Pages = make([]model.Page, len(images))
	for i, img := range images {
		book.Pages[i] = model.Page{ID: i, Image: filepath.FromSlash(img), BookID: book.ID}
	}
	return book, nil
}

func readManifest(dir string) (manifest, error) {
	var m manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("malformed manifest %s: %w", filepath.Join(dir, ManifestName), err)
	}
	return m, nil
}

func scanImages(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read book directory: %w", err)
	}
	var images []string
	for _, de := range dirEntries {
		if de.Type().IsRegular() && imageExts[strings.ToLower(filepath.Ext(de.Name()))] {
			images = append(images, de.Name())
		}
	}
	sort.Strings(images)
	return images, nil
}
