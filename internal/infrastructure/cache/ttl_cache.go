// Package cache implementa cachés en memoria del proceso.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Valores por defecto si la configuración llega en cero.
const (
	DefaultSize = 64
	DefaultTTL  = 60 * time.Second
)

// TTLCache LRU con tamaño máximo y expiración por entrada. Seguro para uso concurrente.
type TTLCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewTTLCache crea una caché con capacidad size y vida ttl por entrada.
func NewTTLCache[K comparable, V any](size int, ttl time.Duration) *TTLCache[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache[K, V]{lru: expirable.NewLRU[K, V](size, nil, ttl)}
}

// Get devuelve el valor si existe y no expiró.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Set guarda el valor; si la caché está llena desaloja el menos usado.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Invalidate elimina una clave.
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.lru.Remove(key)
}

// Len número de entradas vigentes.
func (c *TTLCache[K, V]) Len() int {
	return c.lru.Len()
}
