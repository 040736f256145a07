package suppliers

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"goproductsync_api/internal/core/models"
	"goproductsync_api/pkg/business/service"
)

// DeriveVariationSKU строит детерминированный SKU вариации из SKU родителя,
// кода поставщика и значений характеристик. Значения сортируются, части
// слагифицируются, пустые и повторные части отбрасываются. Если не осталось
// ни одной части, генерируется уникальный токен — стабильного SKU из такого
// входа не получить.
func DeriveVariationSKU(text service.ITextService, parentSKU, supplierCode string, options []string) string {
	sorted := make([]string, len(options))
	copy(sorted, options)
	sort.Strings(sorted)

	parts := make([]string, 0, len(sorted)+2)
	parts = append(parts, text.Slugify(parentSKU), text.Slugify(supplierCode))
	for _, option := range sorted {
		parts = append(parts, text.Slugify(option))
	}

	seen := make(map[string]struct{}, len(parts))
	joined := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		joined = append(joined, part)
	}

	if len(joined) == 0 {
		return uuid.NewString()
	}
	return strings.Join(joined, "-")
}

// SplitCategoryPath разбивает путь категорий по разделителю в упорядоченный
// список различных сегментов: порядок первого вхождения, пустые сегменты
// отбрасываются.
func SplitCategoryPath(path, delimiter string) []string {
	var segments []string
	seen := make(map[string]struct{})
	for _, segment := range strings.Split(path, delimiter) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if _, dup := seen[segment]; dup {
			continue
		}
		seen[segment] = struct{}{}
		segments = append(segments, segment)
	}
	return segments
}

// optionCollector собирает различные значения вариационных характеристик,
// сохраняя порядок первого вхождения имён и значений.
type optionCollector struct {
	names   []string
	options map[string][]string
	seen    map[string]map[string]struct{}
}

func newOptionCollector() *optionCollector {
	return &optionCollector{
		options: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

func (c *optionCollector) Add(name, option string) {
	name = strings.TrimSpace(name)
	option = strings.TrimSpace(option)
	if name == "" || option == "" {
		return
	}
	seen, ok := c.seen[name]
	if !ok {
		seen = make(map[string]struct{})
		c.seen[name] = seen
		c.names = append(c.names, name)
	}
	if _, dup := seen[option]; dup {
		return
	}
	seen[option] = struct{}{}
	c.options[name] = append(c.options[name], option)
}

func (c *optionCollector) Attributes() []models.Attribute {
	if len(c.names) == 0 {
		return nil
	}
	attributes := make([]models.Attribute, 0, len(c.names))
	for _, name := range c.names {
		attributes = append(attributes, models.Attribute{
			Name:      name,
			Variation: true,
			Options:   c.options[name],
		})
	}
	return attributes
}
