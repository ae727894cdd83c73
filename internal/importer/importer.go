package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
	"github.com/giovannicg/INMEDT/pkg/slug"
)

// Field length limits applied while importing. Longer values are truncated
// with a trailing ellipsis rather than rejected.
const (
	maxNameLen        = 200
	maxDescriptionLen = 1000
	maxBrandLen       = 100
)

// defaultImportStock is the stock assigned to imported sale units.
const defaultImportStock = 100

// catalogFile is the JSON document shape accepted by the importer.
type catalogFile struct {
	Catalogo struct {
		Categorias []categoryNode `json:"categorias"`
	} `json:"catalogo"`
}

type categoryNode struct {
	Nombre    string        `json:"nombre"`
	Productos []productNode `json:"productos"`
}

type productNode struct {
	Nombre      string        `json:"nombre"`
	Descripcion string        `json:"descripcion"`
	Marca       string        `json:"marca"`
	Variantes   []variantNode `json:"variantes"`
}

type variantNode struct {
	Nombre          string         `json:"nombre"`
	UnidadesDeVenta []saleUnitNode `json:"unidadesDeVenta"`
}

type saleUnitNode struct {
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
}

// Report summarizes an import run. Errors are counted per node; one bad
// entry never aborts the rest of the file.
type Report struct {
	CategoriesCreated int `json:"categories_created"`
	ProductsCreated   int `json:"products_created"`
	VariantsCreated   int `json:"variants_created"`
	SaleUnitsCreated  int `json:"sale_units_created"`
	Errors            int `json:"errors"`
}

// Importer loads a nested catalog JSON document into the database,
// get-or-creating each level by name so re-importing the same file is safe.
type Importer struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	saleUnitRepo repository.SaleUnitRepository
	logger       *slog.Logger
}

// New creates a new catalog importer.
func New(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	saleUnitRepo repository.SaleUnitRepository,
	logger *slog.Logger,
) *Importer {
	return &Importer{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		saleUnitRepo: saleUnitRepo,
		logger:       logger,
	}
}

// Import reads a catalog JSON document and loads it.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	var file catalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid catalog document: %v", err))
	}

	if len(file.Catalogo.Categorias) == 0 {
		return nil, apperrors.InvalidInput("catalog document has no categories")
	}

	report := &Report{}
	for _, cat := range file.Catalogo.Categorias {
		im.importCategory(ctx, cat, report)
	}

	im.logger.InfoContext(ctx, "catalog import finished",
		slog.Int("categories_created", report.CategoriesCreated),
		slog.Int("products_created", report.ProductsCreated),
		slog.Int("variants_created", report.VariantsCreated),
		slog.Int("sale_units_created", report.SaleUnitsCreated),
		slog.Int("errors", report.Errors),
	)

	return report, nil
}

func (im *Importer) importCategory(ctx context.Context, node categoryNode, report *Report) {
	if node.Nombre == "" {
		report.Errors++
		return
	}

	category, err := im.categoryRepo.GetByName(ctx, node.Nombre)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		im.logger.WarnContext(ctx, "import: category lookup failed",
			slog.String("name", node.Nombre),
			slog.String("error", err.Error()),
		)
		report.Errors++
		return
	}
	if err != nil {
		now := time.Now().UTC()
		category = &domain.Category{
			ID:          uuid.New().String(),
			Name:        node.Nombre,
			Slug:        slug.Generate(node.Nombre),
			Description: "Categoría de " + node.Nombre,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := im.categoryRepo.Create(ctx, category); err != nil {
			im.logger.WarnContext(ctx, "import: category failed",
				slog.String("name", node.Nombre),
				slog.String("error", err.Error()),
			)
			report.Errors++
			return
		}
		report.CategoriesCreated++
	}

	for _, p := range node.Productos {
		im.importProduct(ctx, p, category, report)
	}
}

func (im *Importer) importProduct(ctx context.Context, node productNode, category *domain.Category, report *Report) {
	name := truncate(node.Nombre, maxNameLen)
	if name == "" {
		report.Errors++
		return
	}

	product, err := im.productRepo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		im.logger.WarnContext(ctx, "import: product lookup failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		report.Errors++
		return
	}
	if err != nil {
		brand := truncate(node.Marca, maxBrandLen)
		if brand == "" {
			brand = "Sin marca"
		}

		now := time.Now().UTC()
		product = &domain.Product{
			ID:          uuid.New().String(),
			CategoryID:  category.ID,
			Name:        name,
			Slug:        slug.Generate(name),
			Description: truncate(node.Descripcion, maxDescriptionLen),
			Brand:       brand,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := im.productRepo.Create(ctx, product); err != nil {
			im.logger.WarnContext(ctx, "import: product failed",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			report.Errors++
			return
		}
		report.ProductsCreated++
	}

	for _, v := range node.Variantes {
		im.importVariant(ctx, v, product, report)
	}
}

func (im *Importer) importVariant(ctx context.Context, node variantNode, product *domain.Product, report *Report) {
	if node.Nombre == "" {
		report.Errors++
		return
	}

	variant, err := im.variantRepo.GetByProductAndName(ctx, product.ID, node.Nombre)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		im.logger.WarnContext(ctx, "import: variant lookup failed",
			slog.String("name", node.Nombre),
			slog.String("error", err.Error()),
		)
		report.Errors++
		return
	}
	if err != nil {
		now := time.Now().UTC()
		variant = &domain.ProductVariant{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			Name:        node.Nombre,
			Description: "Variante " + node.Nombre,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := im.variantRepo.Create(ctx, variant); err != nil {
			im.logger.WarnContext(ctx, "import: variant failed",
				slog.String("name", node.Nombre),
				slog.String("error", err.Error()),
			)
			report.Errors++
			return
		}
		report.VariantsCreated++
	}

	for _, u := range node.UnidadesDeVenta {
		im.importSaleUnit(ctx, u, product, variant, report)
	}
}

func (im *Importer) importSaleUnit(ctx context.Context, node saleUnitNode, product *domain.Product, variant *domain.ProductVariant, report *Report) {
	if node.Descripcion == "" || node.Precio.IsNegative() || node.Precio.IsZero() {
		report.Errors++
		return
	}

	sku := saleUnitSKU(product.Name, variant.Name, node.Descripcion)

	// The SKU is deterministic per unit, so an existing row means this unit
	// was loaded by an earlier run. Skip it instead of duplicating.
	exists, err := im.saleUnitRepo.SKUExists(ctx, sku)
	if err != nil {
		im.logger.WarnContext(ctx, "import: sku lookup failed",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		report.Errors++
		return
	}
	if exists {
		return
	}

	now := time.Now().UTC()
	unit := &domain.SaleUnit{
		ID:          uuid.New().String(),
		VariantID:   variant.ID,
		SKU:         sku,
		Description: node.Descripcion,
		Price:       node.Precio,
		Stock:       defaultImportStock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := im.saleUnitRepo.Create(ctx, unit); err != nil {
		im.logger.WarnContext(ctx, "import: sale unit failed",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		report.Errors++
		return
	}
	report.SaleUnitsCreated++
}

// saleUnitSKU derives a PRO-VAR-XXXX SKU from the product and variant names
// plus a short hash of the unit description. The same catalog entry always
// maps to the same SKU.
func saleUnitSKU(productName, variantName, description string) string {
	h := fnv.New32a()
	h.Write([]byte(description))
	return fmt.Sprintf("%s-%s-%04X", skuPart(productName), skuPart(variantName), h.Sum32()&0xFFFF)
}

// skuPart extracts up to three alphanumeric uppercase characters from a name.
func skuPart(name string) string {
	out := make([]rune, 0, 3)
	for _, ch := range name {
		if len(out) >= 3 {
			break
		}
		switch {
		case ch >= 'a' && ch <= 'z':
			out = append(out, ch-'a'+'A')
		case ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9':
			out = append(out, ch)
		}
	}
	if len(out) == 0 {
		return "SKU"
	}
	return string(out)
}

// truncate shortens s to max characters, marking the cut with an ellipsis.
// Counts runes so a multi-byte character is never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
