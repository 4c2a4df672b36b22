package storage

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
)

func openTestStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()

	uri := filepath.Join(t.TempDir(), "bag", "bag_0")
	handle, err := NewFactory().OpenReadWrite(&domain.StorageOptions{URI: uri})
	require.NoError(t, err)
	return handle.(*LocalStorage), uri
}

func frameSize(topic, payload string) uint64 {
	return 16 + uint64(len(topic)) + uint64(len(payload)) + 4
}

func TestWriteAccumulatesSize(t *testing.T) {
	storage, _ := openTestStorage(t)
	defer storage.Close()

	size, err := storage.GetBagfileSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)

	require.NoError(t, storage.Write(&domain.SerializedBagMessage{
		TopicName:      "imu",
		TimeStamp:      42,
		SerializedData: []byte("payload-1"),
	}))
	require.NoError(t, storage.Write(&domain.SerializedBagMessage{
		TopicName:      "imu",
		TimeStamp:      43,
		SerializedData: []byte("payload-two"),
	}))

	size, err = storage.GetBagfileSize()
	require.NoError(t, err)
	assert.Equal(t, frameSize("imu", "payload-1")+frameSize("imu", "payload-two"), size)
}

func TestCloseFlushesFramedRecords(t *testing.T) {
	storage, uri := openTestStorage(t)

	payload := []byte("hello bag")
	require.NoError(t, storage.Write(&domain.SerializedBagMessage{
		TopicName:      "chatter",
		TimeStamp:      1234,
		SerializedData: payload,
	}))
	require.NoError(t, storage.Close())

	data, err := os.ReadFile(uri)
	require.NoError(t, err)
	require.Equal(t, int(frameSize("chatter", string(payload))), len(data))

	assert.Equal(t, uint64(1234), binary.LittleEndian.Uint64(data[0:8]))
	topicLen := binary.LittleEndian.Uint32(data[8:12])
	payloadLen := binary.LittleEndian.Uint32(data[12:16])
	assert.Equal(t, uint32(len("chatter")), topicLen)
	assert.Equal(t, uint32(len(payload)), payloadLen)

	topicEnd := 16 + topicLen
	assert.Equal(t, "chatter", string(data[16:topicEnd]))
	assert.Equal(t, payload, data[topicEnd:topicEnd+payloadLen])
	assert.Equal(t, crc32.ChecksumIEEE(payload), binary.LittleEndian.Uint32(data[topicEnd+payloadLen:]))
}

func TestCreateTopicRejectsConflictingType(t *testing.T) {
	storage, _ := openTestStorage(t)
	defer storage.Close()

	topic := &domain.TopicMetadata{Name: "chatter", Type: "std_msgs/String"}
	require.NoError(t, storage.CreateTopic(topic))
	require.NoError(t, storage.CreateTopic(topic))

	err := storage.CreateTopic(&domain.TopicMetadata{Name: "chatter", Type: "std_msgs/Int32"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "already registered")

	require.NoError(t, storage.RemoveTopic(topic))
	require.NoError(t, storage.CreateTopic(&domain.TopicMetadata{Name: "chatter", Type: "std_msgs/Int32"}))
}

func TestMetadataRetention(t *testing.T) {
	storage, _ := openTestStorage(t)
	defer storage.Close()

	assert.Nil(t, storage.Metadata())

	snapshot := &domain.BagMetadata{MessageCount: 9}
	require.NoError(t, storage.UpdateMetadata(snapshot))
	assert.Equal(t, snapshot, storage.Metadata())
}

func TestOperationsAfterClose(t *testing.T) {
	storage, _ := openTestStorage(t)
	require.NoError(t, storage.Close())

	assert.ErrorIs(t, storage.Close(), ErrStorageClosed)
	assert.ErrorIs(t, storage.Write(&domain.SerializedBagMessage{TopicName: "x"}), ErrStorageClosed)
	assert.ErrorIs(t, storage.CreateTopic(&domain.TopicMetadata{Name: "x"}), ErrStorageClosed)
	assert.ErrorIs(t, storage.UpdateMetadata(&domain.BagMetadata{}), ErrStorageClosed)

	_, err := storage.GetBagfileSize()
	assert.ErrorIs(t, err, ErrStorageClosed)
}

func TestGetRelativeFilePath(t *testing.T) {
	storage, _ := openTestStorage(t)
	defer storage.Close()

	assert.Equal(t, "bag_0", storage.GetRelativeFilePath())
}

func TestMinimumSplitFileSize(t *testing.T) {
	assert.Equal(t, MinimumSplitFileSize, NewFactory().GetMinimumSplitFileSize())
}
