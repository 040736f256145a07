package services

import (
	"context"
	"encoding/json"
)

// ImageProcessor — внешний обработчик изображений товаров. Конвейер
// синхронизации сам изображения не обрабатывает: задача image_processing
// делегируется этой реализации целиком.
type ImageProcessor interface {
	// Process обрабатывает порцию изображений по данным задачи и возвращает
	// число обработанных элементов.
	Process(ctx context.Context, jobData json.RawMessage) (int, error)
}
