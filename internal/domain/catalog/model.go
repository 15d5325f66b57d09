package catalog

import "time"

type WarehouseType string

const (
	WHTMain     WarehouseType = "main"     // основной склад
	WHTTransit  WarehouseType = "transit"  // товары в пути
	WHTWorkshop WarehouseType = "workshop" // производство, сырьё и полуфабрикаты
)

func (t WarehouseType) Valid() bool {
	switch t {
	case WHTMain, WHTTransit, WHTWorkshop:
		return true
	}
	return false
}

type Warehouse struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Type      WarehouseType `json:"type"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Unit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}

type Country struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Province всегда принадлежит стране
type Province struct {
	ID        int64     `json:"id"`
	CountryID int64     `json:"country_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
