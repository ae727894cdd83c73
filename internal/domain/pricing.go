package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Pricing constants for the Quito metropolitan district.
var (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = decimal.NewFromFloat(40.00)
	// ShippingCostQuito applies to deliveries inside the metropolitan district.
	ShippingCostQuito = decimal.NewFromFloat(2.99)
	// ShippingCostOutside applies everywhere else.
	ShippingCostOutside = decimal.NewFromFloat(3.99)
	// TaxRate is the Ecuadorian IVA rate applied to the product subtotal.
	TaxRate = decimal.NewFromFloat(0.15)
)

// quitoSectors lists the urban and rural parishes of the Quito metropolitan
// district that qualify for the in-metro shipping rate.
var quitoSectors = []string{
	// Urban parishes
	"Belisario Quevedo", "Carcelén", "Centro Histórico", "Chilibulo", "Chillogallo",
	"Chimbacalle", "Cochapamba", "Comité del Pueblo", "Concepción", "Cotocollao",
	"El Condado", "Guamaní", "Iñaquito", "Itchimbía", "Jipijapa", "Kennedy",
	"La Argelia", "La Ecuatoriana", "La Ferroviaria", "La Libertad", "La Magdalena",
	"La Mena", "Mariscal Sucre", "Ponceano", "Puengasí", "Quitumbe", "Rumipamba",
	"San Bartolo", "San Isidro del Inca", "San Juan", "Solanda", "Turubamba",
	// Rural parishes
	"Alangasí", "Amaguaña", "Atahualpa", "Calacalí", "Calderón", "Conocoto",
	"Cumbayá", "Chavezpamba", "Checa", "El Quinche", "Gualea", "Guangopolo",
	"Guayllabamba", "La Merced", "Llano Chico", "Lloa", "Mindo", "Nanegal",
	"Nanegalito", "Nayón", "Nono", "Pacto", "Pedro Vicente Maldonado", "Perucho",
	"Pifo", "Píntag", "Pomasqui", "Puéllaro", "Puembo", "San Antonio",
	"San José de Minas", "San Miguel de los Bancos", "Tababela", "Tumbaco",
	"Yaruquí", "Zámbiza",
}

var quitoSectorSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(quitoSectors))
	for _, s := range quitoSectors {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}()

// QuitoSectors returns the recognized sector names, in list order.
func QuitoSectors() []string {
	out := make([]string, len(quitoSectors))
	copy(out, quitoSectors)
	return out
}

// IsQuitoSector reports whether the sector belongs to the Quito metropolitan
// district. Matching is case-insensitive; unrecognized sectors are treated as
// out of metro.
func IsQuitoSector(sector string) bool {
	_, ok := quitoSectorSet[strings.ToLower(strings.TrimSpace(sector))]
	return ok
}

// PriceQuote is the shipping, tax, and total breakdown for a cart subtotal.
type PriceQuote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// Quote prices an order: free shipping at or above the threshold, otherwise the
// in-metro or out-of-metro flat rate by sector; 15% IVA on the product subtotal
// only, rounded half up to cents; total = subtotal + tax + shipping.
func Quote(subtotal decimal.Decimal, sector string) PriceQuote {
	shipping := decimal.Zero
	if subtotal.LessThan(FreeShippingThreshold) {
		if IsQuitoSector(sector) {
			shipping = ShippingCostQuito
		} else {
			shipping = ShippingCostOutside
		}
	}

	tax := subtotal.Mul(TaxRate).Round(2)

	return PriceQuote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(tax).Add(shipping),
	}
}
