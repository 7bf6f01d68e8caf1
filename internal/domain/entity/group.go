package entity

import "time"

// ProductGroup agrupa productos para filtros y reportes (material de oficina, limpieza, EPI...).
type ProductGroup struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
