package emulator

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/db"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
)

// segmentSnapshot is the persisted form of a sealed segment.
type segmentSnapshot struct {
	Collection string        `json:"collection"`
	SegmentID  int64         `json:"segment_id"`
	Rows       []snapshotRow `json:"rows"`
}

type snapshotRow struct {
	ID        any            `json:"id"`
	Partition string         `json:"partition"`
	Fields    map[string]any `json:"fields"`
}

type pendingWrite struct {
	key  string
	data segmentSnapshot
}

// Flush seals the rows inserted since the previous flush into a new segment
// per collection and returns every segment ID of each collection. Segments
// report flushed after the configured number of GetFlushState polls.
func (s *Server) Flush(ctx context.Context, req *gateway.FlushRequest) (*gateway.FlushResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	resp := &gateway.FlushResponse{CollSegIDs: make(map[string]gateway.SegmentIDs, len(req.CollectionNames))}
	var writes []pendingWrite
	for _, name := range req.CollectionNames {
		c, st := s.collection(name)
		if st.Code != 0 {
			s.end()
			return &gateway.FlushResponse{Status: st}, nil
		}
		if len(c.unsealed) > 0 {
			seg := &segment{id: newID(), remaining: s.cfg.FlushSteps}
			c.segments = append(c.segments, seg)
			writes = append(writes, pendingWrite{
				key:  db.SegmentKey(s.cfg.KeyPrefix, name, seg.id),
				data: snapshot(name, seg.id, c.unsealed),
			})
			c.unsealed = nil
		}
		ids := make([]int64, 0, len(c.segments))
		for _, seg := range c.segments {
			ids = append(ids, seg.id)
		}
		resp.CollSegIDs[name] = gateway.SegmentIDs{Data: ids}
	}
	s.end()

	for _, w := range writes {
		if err := s.persist(ctx, w); err != nil {
			return &gateway.FlushResponse{Status: fail(status.CannotCreateFile, "persist segment: %v", err)}, nil
		}
	}
	return resp, nil
}

func snapshot(collection string, id int64, rows []row) segmentSnapshot {
	out := segmentSnapshot{Collection: collection, SegmentID: id, Rows: make([]snapshotRow, len(rows))}
	for i, r := range rows {
		out.Rows[i] = snapshotRow{ID: r.id, Partition: r.partition, Fields: r.fields}
	}
	return out
}

func (s *Server) persist(ctx context.Context, w pendingWrite) error {
	metrics.SegmentsFlushedTotal.Inc()
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(w.data)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, w.key, data); err != nil {
		return err
	}
	s.logger.Debug("Segment persisted",
		zap.String("collection", w.data.Collection),
		zap.Int64("segment_id", w.data.SegmentID),
		zap.Int("rows", len(w.data.Rows)),
	)
	return nil
}

// GetFlushState reports whether every listed segment is flushed. Each call
// advances the listed segments by one step. Unknown segments count as flushed.
func (s *Server) GetFlushState(_ context.Context, req *gateway.GetFlushStateRequest) (*gateway.GetFlushStateResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	want := make(map[int64]bool, len(req.SegmentIDs))
	for _, id := range req.SegmentIDs {
		want[id] = true
	}

	flushed := true
	for _, name := range sortedNames(s.collections) {
		for _, seg := range s.collections[name].segments {
			if !want[seg.id] {
				continue
			}
			if seg.remaining > 0 {
				seg.remaining--
			}
			if seg.remaining > 0 {
				flushed = false
			}
		}
	}
	return &gateway.GetFlushStateResponse{Flushed: flushed}, nil
}
