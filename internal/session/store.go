// Package session owns all per-conversation state. The store is the single
// stateful component: it runs extraction, detection, and reply generation
// for each inbound message, commits the updated record, and decides when a
// session is concluded and its intelligence report goes out.
//
// Concurrency discipline: records live in a striped shard array keyed by
// FNV-1a of the session id. Two requests for the same session serialize on
// their shard; requests for different sessions proceed in parallel. There is
// no global lock and no cross-session invariant.
package session

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/decoykit/scamtrap/internal/agent"
	"github.com/decoykit/scamtrap/internal/detect"
	"github.com/decoykit/scamtrap/internal/domain"
	"github.com/decoykit/scamtrap/internal/extract"
	"github.com/decoykit/scamtrap/internal/report"
)

const shardCount = 64 // power of two, see shardFor

// Config tunes the termination and eviction policy.
type Config struct {
	// MaxTurns concludes a session once this many messages have been
	// processed.
	MaxTurns int
	// AdvancedCutoff concludes a session after this many consecutive
	// ADVANCED turns that produced no new intelligence.
	AdvancedCutoff int
	// IdleTimeout evicts sessions with no activity for this long.
	IdleTimeout time.Duration
	// SweepInterval is how often the background sweeper runs.
	SweepInterval time.Duration
	// DispatchTimeout bounds a single report delivery, retries included.
	DispatchTimeout time.Duration
}

// DefaultConfig returns the stock policy: 20 turns max, 3-turn
// diminishing-returns cutoff, 1 hour idle timeout swept every minute.
func DefaultConfig() Config {
	return Config{
		MaxTurns:        20,
		AdvancedCutoff:  3,
		IdleTimeout:     time.Hour,
		SweepInterval:   time.Minute,
		DispatchTimeout: 30 * time.Second,
	}
}

// Record is one session's accumulated state. Owned exclusively by the store
// and mutated only under its shard lock.
type Record struct {
	ID             string
	Stage          domain.Stage
	TurnCount      int
	Intelligence   domain.Intelligence
	RiskHistory    []float64
	PeakConfidence float64
	ScamConfirmed  bool
	Concluded      bool
	AgentNotes     string
	Persona        agent.Persona

	lastReply       string
	createdAt       time.Time
	lastActivity    time.Time
	advancedIdle    int
	alreadyNotified atomic.Bool
}

// Result is what the adapter forwards back to the counterpart.
type Result struct {
	Reply        string  `json:"reply"`
	ScamDetected bool    `json:"scamDetected"`
	Confidence   float64 `json:"confidence"`
}

// Snapshot is a read-only copy of a record, for tests and monitoring.
type Snapshot struct {
	ID            string
	Stage         domain.Stage
	TurnCount     int
	Intelligence  domain.Intelligence
	RiskHistory   []float64
	ScamConfirmed bool
	Concluded     bool
	AgentNotes    string
	Persona       agent.Persona
}

type shard struct {
	mu      sync.Mutex
	records map[string]*Record
}

// Store orchestrates the pipeline and owns every session record.
type Store struct {
	shards     [shardCount]*shard
	cfg        Config
	extractor  *extract.Extractor
	detector   *detect.Detector
	dispatcher report.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a store wired to the given pipeline components.
func New(cfg Config, extractor *extract.Extractor, detector *detect.Detector, dispatcher report.Dispatcher, logger *slog.Logger) *Store {
	s := &Store{
		cfg:        cfg,
		extractor:  extractor,
		detector:   detector,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*Record)}
	}
	return s
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()&(shardCount-1)]
}

// Process is the single orchestration entry point: look up or create the
// session, extract artifacts, score the message, generate a reply, commit
// the updated record, and evaluate the termination policy. The terminal
// callback, if triggered, is dispatched after the result is committed and
// never blocks the caller.
func (s *Store) Process(ctx context.Context, sessionID string, msg domain.Message) (Result, error) {
	if sessionID == "" {
		return Result{}, domain.ErrInvalidInput("sessionId", "must not be empty")
	}
	if !utf8.ValidString(msg.Text) {
		return Result{}, domain.ErrInvalidInput("message.text", "payload is not valid UTF-8 text")
	}

	// Extraction is pure, so it runs before any state is touched. With the
	// UTF-8 check done it cannot fail, but an error here must still leave
	// all sessions unmutated.
	intel, err := s.extractor.Extract(msg.Text)
	if err != nil {
		return Result{}, err
	}

	// Messages for a concluded session never reopen it: derive a fresh
	// identity by probing numbered suffixes until an open slot is found.
	id := sessionID
	for generation := 2; ; generation++ {
		sh := s.shardFor(id)
		sh.mu.Lock()

		rec, ok := sh.records[id]
		if ok && rec.Concluded {
			sh.mu.Unlock()
			id = fmt.Sprintf("%s#%d", sessionID, generation)
			continue
		}
		if !ok {
			rec = s.newRecord(id)
			sh.records[id] = rec
		}

		result, rep := s.advance(rec, msg, intel)
		sh.mu.Unlock()

		if rep != nil {
			s.dispatch(*rep)
		}
		return result, nil
	}
}

func (s *Store) newRecord(id string) *Record {
	now := s.now()
	return &Record{
		ID:           id,
		Stage:        domain.StageInitial,
		Persona:      agent.PersonaFor(id),
		createdAt:    now,
		lastActivity: now,
	}
}

// advance applies one turn to rec. Caller holds the shard lock. Returns the
// reply result and, when this turn concluded the session, the report to
// dispatch after the lock is released.
func (s *Store) advance(rec *Record, msg domain.Message, intel domain.Intelligence) (Result, *report.Report) {
	newArtifacts := rec.Intelligence.Merge(intel)

	det := s.detector.Detect(msg, rec.RiskHistory)
	rec.RiskHistory = append(rec.RiskHistory, det.Confidence)
	if det.Confidence > rec.PeakConfidence {
		rec.PeakConfidence = det.Confidence
	}
	if det.IsScam {
		// One-way latch: later low-confidence turns never clear it.
		rec.ScamConfirmed = true
	}

	reply, terr := agent.Respond(agent.Input{
		Detection: det,
		Stage:     rec.Stage,
		TurnCount: rec.TurnCount,
		Persona:   rec.Persona,
		LastReply: rec.lastReply,
		Missing: agent.MissingArtifacts{
			PaymentHandle: len(rec.Intelligence.UPIIDs) == 0,
			Link:          len(rec.Intelligence.PhishingLinks) == 0,
			Phone:         len(rec.Intelligence.PhoneNumbers) == 0,
		},
		Threshold: s.detector.Threshold(),
	})
	if terr != nil {
		// Degraded to a neutral reply; the conversation continues.
		s.logger.Warn("session transition fault",
			slog.String("session_id", rec.ID),
			slog.String("error", terr.Error()),
		)
	}

	// The stage never regresses, whatever the agent says.
	if reply.NextStage >= rec.Stage {
		rec.Stage = reply.NextStage
	}
	rec.TurnCount++
	rec.lastReply = reply.Text
	rec.lastActivity = s.now()

	if rec.Stage == domain.StageAdvanced && newArtifacts == 0 {
		rec.advancedIdle++
	} else {
		rec.advancedIdle = 0
	}

	var rep *report.Report
	if rec.TurnCount >= s.cfg.MaxTurns || rec.advancedIdle >= s.cfg.AdvancedCutoff {
		rep = s.concludeLocked(rec)
	}

	return Result{
		Reply:        reply.Text,
		ScamDetected: det.IsScam,
		Confidence:   det.Confidence,
	}, rep
}

// concludeLocked marks rec concluded and builds its report. Caller holds the
// shard lock. Returns nil if the callback was already claimed.
func (s *Store) concludeLocked(rec *Record) *report.Report {
	rec.Concluded = true
	rec.AgentNotes = buildNotes(rec)
	if !rec.alreadyNotified.CompareAndSwap(false, true) {
		return nil
	}
	return &report.Report{
		SessionID:              rec.ID,
		ScamDetected:           rec.ScamConfirmed,
		TotalMessagesExchanged: rec.TurnCount,
		ExtractedIntelligence:  rec.Intelligence,
		AgentNotes:             rec.AgentNotes,
	}
}

// dispatch delivers a report off the request path. Failures are logged,
// never propagated.
func (s *Store) dispatch(rep report.Report) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.DispatchTimeout)
		defer cancel()

		if err := s.dispatcher.Deliver(ctx, rep); err != nil {
			s.logger.Error("terminal callback failed",
				slog.String("session_id", rep.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Close concludes a session on an explicit caller signal. Reports whether
// the session existed and was still open.
func (s *Store) Close(sessionID string) bool {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	rec, ok := sh.records[sessionID]
	if !ok || rec.Concluded {
		sh.mu.Unlock()
		return false
	}
	rep := s.concludeLocked(rec)
	sh.mu.Unlock()

	if rep != nil {
		s.dispatch(*rep)
	}
	return true
}

// Peek returns a read-only copy of a session record.
func (s *Store) Peek(sessionID string) (Snapshot, bool) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[sessionID]
	if !ok {
		return Snapshot{}, false
	}
	var intel domain.Intelligence
	intel.Merge(rec.Intelligence)
	return Snapshot{
		ID:            rec.ID,
		Stage:         rec.Stage,
		TurnCount:     rec.TurnCount,
		Intelligence:  intel,
		RiskHistory:   append([]float64(nil), rec.RiskHistory...),
		ScamConfirmed: rec.ScamConfirmed,
		Concluded:     rec.Concluded,
		AgentNotes:    rec.AgentNotes,
		Persona:       rec.Persona,
	}, true
}
