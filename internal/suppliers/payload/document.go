package payload

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Document — произвольный вложенный документ фида поставщика.
// Вся работа адаптеров с «одиночный-объект-или-массив» артефактами
// (типичными для XML->JSON конверсии) сосредоточена здесь.
type Document map[string]interface{}

// Parse разбирает сырой payload. Дампы некоторых поставщиков приходят в
// Windows-1251; невалидный UTF-8 прогоняем через декодер, как и CSV-фиды.
func Parse(raw json.RawMessage) (Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data := []byte(raw)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), data)
		if err == nil {
			data = decoded
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Child возвращает вложенный объект или nil.
func (d Document) Child(key string) Document {
	if d == nil {
		return nil
	}
	if child, ok := d[key].(map[string]interface{}); ok {
		return Document(child)
	}
	return nil
}

// Values возвращает значение под ключом как список, трактуя одиночный
// объект или скаляр ровно как одноэлементный массив.
func (d Document) Values(key string) []interface{} {
	if d == nil {
		return nil
	}
	raw, ok := d[key]
	if !ok || raw == nil {
		return nil
	}
	if list, ok := raw.([]interface{}); ok {
		return list
	}
	return []interface{}{raw}
}

// List — как Values, но отфильтрован до вложенных объектов.
func (d Document) List(key string) []Document {
	values := d.Values(key)
	if len(values) == 0 {
		return nil
	}
	docs := make([]Document, 0, len(values))
	for _, v := range values {
		if child, ok := v.(map[string]interface{}); ok {
			docs = append(docs, Document(child))
		}
	}
	return docs
}

// Strings возвращает строковые значения под ключом (одно или массив),
// пустые строки отбрасываются.
func (d Document) Strings(key string) []string {
	values := d.Values(key)
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				result = append(result, s)
			}
		}
	}
	return result
}

// String возвращает строку под ключом или fallback, если поле отсутствует
// либо пустое. Числовые значения приводятся к строке.
func (d Document) String(key, fallback string) string {
	if d == nil {
		return fallback
	}
	switch v := d[key].(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fallback
}

// Float разбирает число под ключом; отсутствующее или нечисловое значение
// даёт 0. Десятичная запятая в строках принимается наравне с точкой.
func (d Document) Float(key string) float64 {
	if d == nil {
		return 0
	}
	switch v := d[key].(type) {
	case float64:
		return v
	case string:
		normalized := strings.Replace(strings.TrimSpace(v), ",", ".", -1)
		parsed, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}

// Int — как Float, с обрезанием дробной части.
func (d Document) Int(key string) int {
	return int(d.Float(key))
}
