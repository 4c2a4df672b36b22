package domain

// SerializedBagMessage is a single timestamped message as handed to the
// writer. The payload is an opaque, already serialized buffer; the writer
// never inspects it beyond passing it to the compressor.
type SerializedBagMessage struct {
	// TopicName is the destination topic the message was recorded from.
	TopicName string

	// TimeStamp records when the message was received, in Unix nanoseconds.
	TimeStamp int64

	// SerializedData is the serialized message payload.
	SerializedData []byte
}

// TopicMetadata describes a topic registered with the writer before
// messages for it are recorded.
type TopicMetadata struct {
	// Name is the unique topic name within the bag.
	Name string `yaml:"name"`

	// Type is the message type identifier of the topic.
	Type string `yaml:"type"`

	// SerializationFormat names the wire format the topic's messages use.
	SerializationFormat string `yaml:"serialization_format"`
}

// ConverterOptions selects the serialization formats the converter factory
// resolves. When input and output match, no conversion takes place.
type ConverterOptions struct {
	// InputSerializationFormat is the format messages arrive in.
	InputSerializationFormat string

	// OutputSerializationFormat is the format messages are persisted in.
	OutputSerializationFormat string
}
