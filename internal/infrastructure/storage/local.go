// Package storage guarda archivos generados en disco local.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/joyeria-api/internal/application/form26q"
)

// LocalStorage escribe en un directorio base; lo crea si no existe.
type LocalStorage struct {
	dir string
}

// NewLocalStorage construye el almacenamiento sobre dir.
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Save escribe un solo archivo de forma atómica y devuelve su ruta.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	paths, err := s.SaveAll(form26q.File{Name: name, Data: data})
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// SaveAll escribe primero todos los temporales y solo entonces los renombra.
// Si un rename falla se eliminan los archivos ya publicados del lote y los temporales restantes.
func (s *LocalStorage) SaveAll(files ...form26q.File) ([]string, error) {
	for _, f := range files {
		if f.Name == "" || filepath.Base(f.Name) != f.Name {
			return nil, fmt.Errorf("storage: nombre de archivo inválido %q", f.Name)
		}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio: %w", err)
	}

	temps := make([]string, 0, len(files))
	removeAll := func(paths []string) {
		for _, p := range paths {
			os.Remove(p)
		}
	}
	for _, f := range files {
		tmp, err := s.writeTemp(f)
		if err != nil {
			removeAll(temps)
			return nil, err
		}
		temps = append(temps, tmp)
	}

	finals := make([]string, 0, len(files))
	for i, f := range files {
		final := filepath.Join(s.dir, f.Name)
		if err := os.Rename(temps[i], final); err != nil {
			removeAll(finals)
			removeAll(temps[i:])
			return nil, fmt.Errorf("storage: renombrar %s: %w", f.Name, err)
		}
		finals = append(finals, final)
	}
	return finals, nil
}

func (s *LocalStorage) writeTemp(f form26q.File) (string, error) {
	tmp, err := os.CreateTemp(s.dir, f.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("storage: archivo temporal: %w", err)
	}
	_, werr := tmp.Write(f.Data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: escribir %s: %w", f.Name, err)
	}
	return tmp.Name(), nil
}
