// Caché de tickets de acceso WSAA: artefacto XML en disco por (servicio, CUIT)
// con frente en memoria por proceso. Publicación atómica: write-to-temp + rename.

package wsaa

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// margen antes de la expiración real para no usar tickets al borde del vencimiento.
const expiryMargin = 60 * time.Second

// ticketCache combina el directorio compartido entre procesos con un mapa en
// memoria. Los lectores de disco son lock-free: si el archivo está a medio
// escribir o corrupto, se descarta y se autentica de nuevo.
type ticketCache struct {
	dir string

	mu  sync.RWMutex
	mem map[string]*Ticket
}

func newTicketCache(dir string) *ticketCache {
	return &ticketCache{dir: dir, mem: make(map[string]*Ticket)}
}

func cacheKey(service, cuit string) string {
	return service + ":" + cuit
}

// path artefacto en disco: TA-<servicio>-<cuit>.xml
func (c *ticketCache) path(service, cuit string) string {
	return filepath.Join(c.dir, fmt.Sprintf("TA-%s-%s.xml", service, cuit))
}

// get devuelve un ticket vigente de memoria o disco, o nil.
func (c *ticketCache) get(service, cuit string, now time.Time) *Ticket {
	c.mu.RLock()
	t := c.mem[cacheKey(service, cuit)]
	c.mu.RUnlock()
	if t != nil && t.Vigente(now) {
		return t
	}

	data, err := os.ReadFile(c.path(service, cuit))
	if err != nil {
		return nil
	}
	t, err = ParseTicketResponse(data)
	if err != nil {
		// Archivo parcial o corrupto: se ignora y se reautentica.
		return nil
	}
	if !t.Vigente(now) {
		return nil
	}

	c.mu.Lock()
	c.mem[cacheKey(service, cuit)] = t
	c.mu.Unlock()
	return t
}

// put publica el ticket: primero a un archivo temporal en el mismo directorio,
// luego rename (atómico en POSIX). Entre escritores concurrentes gana el último;
// ambos tickets son válidos para AFIP.
func (c *ticketCache) put(service, cuit string, t *Ticket) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("wsaa: crear directorio de caché: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, fmt.Sprintf("TA-%s-%s-*.tmp", service, cuit))
	if err != nil {
		return fmt.Errorf("wsaa: crear archivo temporal: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(t.SourceXML); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("wsaa: escribir ticket: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("wsaa: cerrar archivo temporal: %w", err)
	}
	if err := os.Rename(tmpName, c.path(service, cuit)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("wsaa: publicar ticket: %w", err)
	}

	c.mu.Lock()
	c.mem[cacheKey(service, cuit)] = t
	c.mu.Unlock()
	return nil
}

// invalidate descarta el ticket en memoria (el de disco se pisa en el próximo put).
func (c *ticketCache) invalidate(service, cuit string) {
	c.mu.Lock()
	delete(c.mem, cacheKey(service, cuit))
	c.mu.Unlock()
}
