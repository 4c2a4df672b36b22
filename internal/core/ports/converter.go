package ports

import "github.com/iamNilotpal/bagwriter/internal/core/domain"

// ConverterPort reserializes a message from the input format into the
// output format the bag is persisted in.
type ConverterPort interface {
	Convert(message *domain.SerializedBagMessage) (*domain.SerializedBagMessage, error)
}

// ConverterFactoryPort resolves a converter for a pair of serialization
// formats. The writer only loads a converter when the two formats differ.
type ConverterFactoryPort interface {
	Load(inputFormat, outputFormat string) (ConverterPort, error)
}
