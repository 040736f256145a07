package response

// ItemError — пер-элементная ошибка батч-вызова.
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchItem — результат по одному элементу: либо id, либо ошибка.
type BatchItem struct {
	ID    int64      `json:"id"`
	SKU   string     `json:"sku"`
	Error *ItemError `json:"error,omitempty"`
}

func (i BatchItem) Failed() bool {
	return i.Error != nil
}

// ProductBatch — ответ батч-эндпоинта товаров и вариаций.
type ProductBatch struct {
	Create []BatchItem `json:"create"`
	Update []BatchItem `json:"update"`
}

// SKULookup — ответ на bulk-поиск по SKU: найденные SKU -> id каталога.
type SKULookup struct {
	Found map[string]int64 `json:"found"`
}
