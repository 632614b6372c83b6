package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"chat-hub/domain"
)

// Index wraps a Bluge writer configured for in-memory-only segments.
// Writes are serialized; searches open a point-in-time reader and can
// run concurrently with indexing.
type Index struct {
	mu     sync.Mutex
	writer *bluge.Writer
	log    *slog.Logger
}

func NewInMemoryIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening in-memory index: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// IndexMessage upserts one message document keyed by the message id.
func (i *Index) IndexMessage(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("content", msg.Content)).
		AddField(bluge.NewKeywordField("room", string(msg.RoomID))).
		AddField(bluge.NewKeywordField("sender", string(msg.SenderID))).
		AddField(bluge.NewDateTimeField("created_at", msg.CreatedAt))

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the ids of the best-matching messages, ranked by score.
// An empty Terms matches everything, which combined with the room filter
// gives "latest activity in room" semantics.
func (i *Index) Search(ctx context.Context, query Query) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Closing index reader failed", "error", err)
		}
	}()

	boolean := bluge.NewBooleanQuery()
	if query.Terms != "" {
		boolean.AddMust(bluge.NewMatchQuery(query.Terms).SetField("content"))
	} else {
		boolean.AddMust(bluge.NewMatchAllQuery())
	}
	if query.RoomID != "" {
		boolean.AddMust(bluge.NewTermQuery(string(query.RoomID)).SetField("room"))
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, boolean))
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Close()
}
