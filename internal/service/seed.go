package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kahvecikaan/probagno/internal/cache"
	"github.com/kahvecikaan/probagno/internal/domain"
)

// Seed upserts the built-in catalog by slug. Items that fail are logged and
// skipped; their errors are returned joined.
func (s *CatalogService) Seed(ctx context.Context) error {
	s.logger.Info("Seeding catalog", "products", len(seedProducts), "categories", len(seedCategories))

	var errs []error
	for _, p := range SeedProducts() {
		if _, err := s.repo.UpsertProductBySlug(ctx, p); err != nil {
			s.logger.Error("Unable to seed product", "slug", p.Slug, "error", err)
			errs = append(errs, fmt.Errorf("product %s: %w", p.Slug, err))
		}
	}
	for _, c := range SeedCategories() {
		if _, err := s.repo.UpsertCategoryBySlug(ctx, c); err != nil {
			s.logger.Error("Unable to seed category", "slug", c.Slug, "error", err)
			errs = append(errs, fmt.Errorf("category %s: %w", c.Slug, err))
		}
	}

	s.productsChanged()
	s.cache.Invalidate(cache.BucketCategories)
	return errors.Join(errs...)
}

// SeedProducts returns a fresh copy of the built-in products
func SeedProducts() domain.Products {
	out := make(domain.Products, 0, len(seedProducts))
	for i := range seedProducts {
		out = append(out, seedProducts[i].Clone())
	}
	return out
}

// SeedCategories returns a fresh copy of the built-in categories
func SeedCategories() []*domain.Category {
	out := make([]*domain.Category, 0, len(seedCategories))
	for i := range seedCategories {
		c := seedCategories[i]
		out = append(out, &c)
	}
	return out
}

func images(slug string, n int) []domain.ProductImage {
	out := make([]domain.ProductImage, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.ProductImage{
			ID:        fmt.Sprintf("%s-%d", slug, i),
			URL:       fmt.Sprintf("/images/products/%s-%d.jpg", slug, i),
			Alt:       slug,
			IsPrimary: i == 1,
		})
	}
	return out
}

var seedCategories = []domain.Category{
	{
		Name:        "Έπιπλα Μπάνιου",
		NameEn:      "Bathroom Vanities",
		Slug:        "vanities",
		Description: "Έπιπλα μπάνιου με νιπτήρα σε πολλές διαστάσεις",
		Image:       "/images/categories/vanities.jpg",
	},
	{
		Name:        "Καθρέπτες",
		NameEn:      "Mirrors",
		Slug:        "mirrors",
		Description: "Καθρέπτες με ή χωρίς φωτισμό LED",
		Image:       "/images/categories/mirrors.jpg",
	},
	{
		Name:        "Ντουλάπια",
		NameEn:      "Cabinets",
		Slug:        "cabinets",
		Description: "Κολώνες και κρεμαστά ντουλάπια αποθήκευσης",
		Image:       "/images/categories/cabinets.jpg",
	},
	{
		Name:        "Αξεσουάρ",
		NameEn:      "Accessories",
		Slug:        "accessories",
		Description: "Αξεσουάρ για ολοκληρωμένο μπάνιο",
		Image:       "/images/categories/accessories.jpg",
	},
}

var seedProducts = []domain.Product{
	{
		Name:          "Νιπτήρας Ardesia",
		NameEn:        "Ardesia Vanity",
		Slug:          "ardesia-vanity",
		Description:   "Κρεμαστό έπιπλο μπάνιου με συρτάρια soft-close και νιπτήρα πορσελάνης.",
		DescriptionEn: "Wall-hung vanity with soft-close drawers and porcelain basin.",
		Category:      "vanities",
		Subcategory:   "wall-hung",
		Tags:          []string{"vanities", "wall-hung"},
		BasePrice:     690,
		SalePrice:     domain.Price(590),
		Images:        images("ardesia-vanity", 2),
		Dimensions: []domain.ProductDimension{
			{ID: "ardesia-60", Width: 60, Height: 50, Depth: 46, Price: 690, SKU: "ARD-060"},
			{ID: "ardesia-80", Width: 80, Height: 50, Depth: 46, Price: 790, SKU: "ARD-080"},
			{ID: "ardesia-100", Width: 100, Height: 50, Depth: 46, Price: 920, SKU: "ARD-100"},
		},
		Materials:  []string{"MDF", "Πορσελάνη"},
		Colors:     []string{"White", "Anthracite"},
		Features:   []string{"Soft-close συρτάρια", "Αδιάβροχη λάκα"},
		InStock:    true,
		Featured:   true,
		BestSeller: true,
	},
	{
		Name:          "Νιπτήρας Latte",
		NameEn:        "Latte Vanity",
		Slug:          "latte-vanity",
		Description:   "Επιδαπέδιο έπιπλο με ντουλάπια και φυσικό καπλαμά δρυός.",
		DescriptionEn: "Floor-standing vanity with doors and natural oak veneer.",
		Category:      "vanities",
		Subcategory:   "floor-standing",
		Tags:          []string{"vanities", "floor-standing"},
		BasePrice:     840,
		Images:        images("latte-vanity", 2),
		Dimensions: []domain.ProductDimension{
			{ID: "latte-70", Width: 70, Height: 85, Depth: 46, Price: 840, SKU: "LAT-070"},
			{ID: "latte-90", Width: 90, Height: 85, Depth: 46, Price: 980, SKU: "LAT-090"},
		},
		Materials: []string{"Καπλαμάς δρυός", "Πορσελάνη"},
		Colors:    []string{"Oak"},
		Features:  []string{"Μεντεσέδες Blum"},
		InStock:   true,
		Featured:  true,
	},
	{
		Name:          "Νιπτήρας Nova",
		NameEn:        "Nova Vanity",
		Slug:          "nova-vanity",
		Description:   "Μινιμαλιστικό κρεμαστό έπιπλο με επιφάνεια solid surface.",
		DescriptionEn: "Minimal wall-hung vanity with solid surface top.",
		Category:      "vanities",
		Subcategory:   "wall-hung",
		Tags:          []string{"vanities", "wall-hung"},
		BasePrice:     1250,
		Images:        images("nova-vanity", 1),
		Dimensions: []domain.ProductDimension{
			{ID: "nova-120", Width: 120, Height: 45, Depth: 48, Price: 1250, SKU: "NOV-120"},
		},
		Materials: []string{"Solid surface", "MDF"},
		Colors:    []string{"Matt Black", "White"},
		Features:  []string{"Διπλός νιπτήρας"},
		InStock:   false,
	},
	{
		Name:          "Καθρέπτης Luna LED",
		NameEn:        "Luna LED Mirror",
		Slug:          "luna-led-mirror",
		Description:   "Στρογγυλός καθρέπτης με περιμετρικό φωτισμό LED και αντιθαμβωτικό.",
		DescriptionEn: "Round mirror with perimeter LED lighting and demister.",
		Category:      "mirrors",
		Tags:          []string{"mirrors", "led"},
		BasePrice:     240,
		Images:        images("luna-led-mirror", 1),
		Dimensions: []domain.ProductDimension{
			{ID: "luna-60", Width: 60, Height: 60, Depth: 3, Price: 240, SKU: "LUN-060"},
			{ID: "luna-80", Width: 80, Height: 80, Depth: 3, Price: 310, SKU: "LUN-080"},
		},
		Materials:  []string{"Γυαλί", "Αλουμίνιο"},
		Colors:     []string{"Silver"},
		Features:   []string{"Αντιθαμβωτικό", "Αισθητήρας αφής"},
		InStock:    true,
		BestSeller: true,
	},
	{
		Name:          "Καθρέπτης Quadro",
		NameEn:        "Quadro Mirror",
		Slug:          "quadro-mirror",
		Description:   "Ορθογώνιος καθρέπτης με ξύλινο πλαίσιο.",
		DescriptionEn: "Rectangular mirror with wooden frame.",
		Category:      "mirrors",
		Tags:          []string{"mirrors"},
		BasePrice:     160,
		SalePrice:     domain.Price(130),
		Images:        images("quadro-mirror", 1),
		Dimensions: []domain.ProductDimension{
			{ID: "quadro-50", Width: 50, Height: 70, Depth: 2, Price: 160, SKU: "QUA-050"},
		},
		Materials: []string{"Γυαλί", "Ξύλο"},
		Colors:    []string{"Oak", "White"},
		InStock:   true,
	},
	{
		Name:          "Κολώνα Alto",
		NameEn:        "Alto Tall Cabinet",
		Slug:          "alto-tall-cabinet",
		Description:   "Ψηλή κολώνα με ράφια και πόρτα με καθρέπτη.",
		DescriptionEn: "Tall cabinet with shelves and mirrored door.",
		Category:      "cabinets",
		Tags:          []string{"cabinets"},
		BasePrice:     380,
		Images:        images("alto-tall-cabinet", 1),
		Dimensions: []domain.ProductDimension{
			{ID: "alto-35", Width: 35, Height: 160, Depth: 30, Price: 380, SKU: "ALT-035"},
		},
		Materials: []string{"MDF"},
		Colors:    []string{"White", "Anthracite"},
		Features:  []string{"Ρυθμιζόμενα ράφια"},
		InStock:   true,
		Featured:  true,
	},
	{
		Name:          "Ντουλάπι Box",
		NameEn:        "Box Wall Cabinet",
		Slug:          "box-wall-cabinet",
		Description:   "Κρεμαστό ντουλάπι με ανοιγόμενη πόρτα.",
		DescriptionEn: "Wall cabinet with hinged door.",
		Category:      "cabinets",
		Tags:          []string{"cabinets", "wall-hung"},
		BasePrice:     190,
		Images:        images("box-wall-cabinet", 1),
		Dimensions: []domain.ProductDimension{
			{ID: "box-40", Width: 40, Height: 60, Depth: 20, Price: 190, SKU: "BOX-040"},
		},
		Materials: []string{"MDF"},
		Colors:    []string{"White"},
		InStock:   true,
	},
	{
		Name:          "Σετ Αξεσουάρ Onda",
		NameEn:        "Onda Accessory Set",
		Slug:          "onda-accessory-set",
		Description:   "Σετ από σαπουνοθήκη, ποτήρι και θήκη οδοντόβουρτσας.",
		DescriptionEn: "Soap dish, tumbler and toothbrush holder set.",
		Category:      "accessories",
		Tags:          []string{"accessories"},
		BasePrice:     45,
		Images:        images("onda-accessory-set", 1),
		Dimensions: []domain.ProductDimension{
			{ID: "onda-set", Width: 10, Height: 12, Depth: 10, Price: 45, SKU: "OND-SET"},
		},
		Materials: []string{"Κεραμικό"},
		Colors:    []string{"White", "Matt Black"},
		InStock:   true,
	},
}
