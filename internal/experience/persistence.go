package experience

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

// ErrMalformedRecord is returned when a dumped line cannot be decoded back.
var ErrMalformedRecord = errors.New("malformed experience record")

// PersistenceStats contains statistics about persistence operations
type PersistenceStats struct {
	FilesWritten   int64
	RecordsWritten int64
	BytesWritten   int64
	WriteErrors    int64
	LastWriteTime  time.Time
}

// FilePersistence dumps transitions and value tables as JSON lines for offline inspection.
// The layout of a record is not a stable format and there is no loader for tables.
type FilePersistence struct {
	baseDir string
	logger  zerolog.Logger

	mu    sync.Mutex
	stats PersistenceStats
}

// NewFilePersistence creates baseDir if needed.
func NewFilePersistence(baseDir string, logger zerolog.Logger) (*FilePersistence, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FilePersistence{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "file_persistence").Logger(),
	}, nil
}

// WriteTransitions writes one record per transition to <baseDir>/<name>.jsonl and returns the path.
func (fp *FilePersistence) WriteTransitions(ctx context.Context, name string, transitions []Transition) (string, error) {
	records := make([]*structpb.Struct, 0, len(transitions))
	for _, t := range transitions {
		rec, err := structpb.NewStruct(map[string]interface{}{
			"id":           t.ID,
			"game_id":      t.GameID,
			"player_id":    t.PlayerID,
			"state":        pilesToList(t.State),
			"action":       actionToMap(t.Action),
			"next_state":   pilesToList(t.NextState),
			"reward":       t.Reward,
			"done":         t.Done,
			"collected_at": t.CollectedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode transition %s: %w", t.ID, err)
		}
		records = append(records, rec)
	}
	return fp.writeRecords(ctx, name, records)
}

// WriteQTable writes one record per table entry to <baseDir>/<name>.jsonl and returns the path.
func (fp *FilePersistence) WriteQTable(ctx context.Context, name string, entries []agent.Entry) (string, error) {
	records := make([]*structpb.Struct, 0, len(entries))
	for _, e := range entries {
		rec, err := structpb.NewStruct(map[string]interface{}{
			"state":  e.State,
			"action": actionToMap(e.Action),
			"value":  e.Value,
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode entry %s %v: %w", e.State, e.Action, err)
		}
		records = append(records, rec)
	}
	return fp.writeRecords(ctx, name, records)
}

func (fp *FilePersistence) writeRecords(ctx context.Context, name string, records []*structpb.Struct) (string, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	path := filepath.Join(fp.baseDir, name+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		fp.stats.WriteErrors++
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var written int64
	for i, rec := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				fp.stats.WriteErrors++
				return "", err
			}
		}
		data, err := protojson.Marshal(rec)
		if err != nil {
			fp.stats.WriteErrors++
			return "", fmt.Errorf("failed to marshal record: %w", err)
		}
		n, err := w.Write(append(data, '\n'))
		if err != nil {
			fp.stats.WriteErrors++
			return "", fmt.Errorf("failed to write record: %w", err)
		}
		written += int64(n)
	}
	if err := w.Flush(); err != nil {
		fp.stats.WriteErrors++
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}

	fp.stats.FilesWritten++
	fp.stats.RecordsWritten += int64(len(records))
	fp.stats.BytesWritten += written
	fp.stats.LastWriteTime = time.Now()

	fp.logger.Debug().
		Str("path", path).
		Int("records", len(records)).
		Int64("bytes", written).
		Msg("Wrote records to file")

	return path, nil
}

// ReadTransitions decodes a file produced by WriteTransitions.
func ReadTransitions(path string) ([]Transition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Transition
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec structpb.Struct
		if err := protojson.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		t, err := transitionFromStruct(&rec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return out, nil
}

func (fp *FilePersistence) Stats() PersistenceStats {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.stats
}

func pilesToList(p core.Piles) []interface{} {
	out := make([]interface{}, len(p))
	for i, n := range p {
		out[i] = n
	}
	return out
}

func actionToMap(a core.Action) map[string]interface{} {
	return map[string]interface{}{"pile": a.Pile, "count": a.Count}
}

func transitionFromStruct(rec *structpb.Struct) (Transition, error) {
	f := rec.GetFields()
	action := f["action"].GetStructValue().GetFields()
	if action == nil {
		return Transition{}, fmt.Errorf("%w: missing action", ErrMalformedRecord)
	}
	collected, err := time.Parse(time.RFC3339Nano, f["collected_at"].GetStringValue())
	if err != nil {
		return Transition{}, fmt.Errorf("%w: collected_at: %v", ErrMalformedRecord, err)
	}
	return Transition{
		ID:       f["id"].GetStringValue(),
		GameID:   f["game_id"].GetStringValue(),
		PlayerID: int(f["player_id"].GetNumberValue()),
		State:    listToPiles(f["state"].GetListValue()),
		Action: core.Action{
			Pile:  int(action["pile"].GetNumberValue()),
			Count: int(action["count"].GetNumberValue()),
		},
		NextState:   listToPiles(f["next_state"].GetListValue()),
		Reward:      f["reward"].GetNumberValue(),
		Done:        f["done"].GetBoolValue(),
		CollectedAt: collected,
	}, nil
}

func listToPiles(l *structpb.ListValue) core.Piles {
	values := l.GetValues()
	p := make(core.Piles, len(values))
	for i, v := range values {
		p[i] = int(v.GetNumberValue())
	}
	return p
}
