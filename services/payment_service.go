package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/internal/status"
	"booking-portal/models"
	"booking-portal/monitoring"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pendingSetKey = "payments:pending"

	// MaxLocalOrderSize is the soft guidance for uploaded documents.
	MaxLocalOrderSize = 10 << 20
)

// PaymentOutcomeRecord is what the response route reads once the
// watcher has seen a terminal state.
type PaymentOutcomeRecord struct {
	Status  models.PaymentOutcome `json:"status"`
	EventID string                `json:"event_id"`
	Reason  string                `json:"reason,omitempty"`
}

// PaymentService drives both settlement paths: the FPX redirect with
// its bounded status poll, and the synchronous local-order upload.
type PaymentService struct {
	Redis    *redis.Client
	gw       *gateway.Client
	pn       *pubnub.PubNub
	bookings *BookingService

	pollInterval time.Duration
	maxPollErrs  int

	// watchCtx bounds all watcher goroutines; cancelled at shutdown.
	watchCtx context.Context

	log *zap.Logger
}

func NewPaymentService(ctx context.Context, redisClient *redis.Client, gw *gateway.Client, pn *pubnub.PubNub, bookings *BookingService, pollInterval time.Duration, maxPollErrs int, log *zap.Logger) *PaymentService {
	return &PaymentService{
		Redis:        redisClient,
		gw:           gw,
		pn:           pn,
		bookings:     bookings,
		pollInterval: pollInterval,
		maxPollErrs:  maxPollErrs,
		watchCtx:     ctx,
		log:          log,
	}
}

func pendingKey(sessionID string) string {
	return fmt.Sprintf("payment:pending:%s", sessionID)
}

func outcomeKey(sessionID string) string {
	return fmt.Sprintf("payment:outcome:%s", sessionID)
}

// StartFPX initiates the online-banking settlement. On success the
// persisted "payment in progress" marker is set, a status watcher is
// started, and the bank's HTML document is returned for the handler
// to serve verbatim.
func (s *PaymentService) StartFPX(ctx context.Context, session *Session, req *gateway.FPXPaymentRequest) (string, error) {
	html, err := s.gw.CreateFPXPayment(ctx, session.Token, req)
	if err != nil {
		return "", fmt.Errorf("StartFPX: %w", err)
	}

	pending := &models.PendingPayment{
		SessionID: session.ID,
		UserID:    session.User.ID,
		EventID:   req.EventID,
		Token:     session.Token,
		StartedAt: time.Now().UTC(),
	}
	if err := s.markPending(ctx, pending); err != nil {
		return "", fmt.Errorf("StartFPX: %w", err)
	}

	go s.watch(pending)
	return html, nil
}

// InProgress reports whether the session has a live pending marker.
func (s *PaymentService) InProgress(ctx context.Context, sessionID string) bool {
	exists, err := s.Redis.Exists(ctx, pendingKey(sessionID)).Result()
	return err == nil && exists > 0
}

// Outcome reads and consumes the terminal result for the session.
// ErrNotPaying means the response route was entered directly.
func (s *PaymentService) Outcome(ctx context.Context, sessionID string) (*PaymentOutcomeRecord, error) {
	raw, err := s.Redis.Get(ctx, outcomeKey(sessionID)).Result()
	if err == redis.Nil {
		if s.InProgress(ctx, sessionID) {
			return &PaymentOutcomeRecord{Status: models.PaymentPending}, nil
		}
		return nil, status.ErrNotPaying
	}
	if err != nil {
		return nil, fmt.Errorf("Outcome: redis.Get: %w", err)
	}

	var record PaymentOutcomeRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("Outcome: json.Unmarshal: %w", err)
	}
	_ = s.Redis.Del(ctx, outcomeKey(sessionID)).Err()
	return &record, nil
}

// Resume restarts watchers for markers that survived a restart. An
// orphaned marker is still "payment in progress"; polling picks up
// where it left off rather than losing the settlement.
func (s *PaymentService) Resume(ctx context.Context) {
	sessionIDs, err := s.Redis.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		s.log.Error("resume: listing pending payments", zap.Error(err))
		return
	}

	for _, sessionID := range sessionIDs {
		raw, err := s.Redis.Get(ctx, pendingKey(sessionID)).Result()
		if err == redis.Nil {
			// Marker gone but set membership left behind.
			_ = s.Redis.SRem(ctx, pendingSetKey, sessionID).Err()
			continue
		}
		if err != nil {
			s.log.Error("resume: loading pending payment", zap.String("session_id", sessionID), zap.Error(err))
			continue
		}

		var pending models.PendingPayment
		if err := json.Unmarshal([]byte(raw), &pending); err != nil {
			s.log.Error("resume: decoding pending payment", zap.String("session_id", sessionID), zap.Error(err))
			continue
		}

		s.log.Info("resuming payment watcher",
			zap.String("session_id", pending.SessionID),
			zap.String("event_id", pending.EventID),
		)
		go s.watch(&pending)
	}
}

// watch polls the platform every pollInterval until a terminal state
// or the error budget runs out. Exactly one terminal path clears the
// pending marker.
func (s *PaymentService) watch(pending *models.PendingPayment) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	consecutiveErrs := 0
	for {
		select {
		case <-s.watchCtx.Done():
			// Marker stays set; the watcher resumes on next start.
			return

		case <-ticker.C:
		}

		state, err := s.gw.CheckPaymentStatus(s.watchCtx, pending.Token)
		if err != nil {
			consecutiveErrs++
			monitoring.TrackPaymentPoll("error")
			if consecutiveErrs >= s.maxPollErrs {
				s.log.Warn("payment poll abandoned",
					zap.String("session_id", pending.SessionID),
					zap.Int("consecutive_errors", consecutiveErrs),
				)
				s.finish(pending, &PaymentOutcomeRecord{
					Status:  models.PaymentFailed,
					EventID: pending.EventID,
					Reason:  status.ErrPollExhausted.Error(),
				})
				return
			}
			continue
		}
		consecutiveErrs = 0

		switch state.Status {
		case models.PaymentCompleted:
			monitoring.TrackPaymentPoll("completed")
			if err := s.bookings.StoreConfirmation(s.watchCtx, pending.SessionID, state.Booking, state.Event); err != nil {
				s.log.Error("storing confirmation", zap.Error(err))
			}
			s.finish(pending, &PaymentOutcomeRecord{
				Status:  models.PaymentCompleted,
				EventID: pending.EventID,
			})
			return

		case models.PaymentFailed:
			monitoring.TrackPaymentPoll("failed")
			s.finish(pending, &PaymentOutcomeRecord{
				Status:  models.PaymentFailed,
				EventID: pending.EventID,
			})
			return

		default:
			monitoring.TrackPaymentPoll("pending")
		}
	}
}

// finish clears the pending marker, records the outcome for the
// response route and notifies the user's push channel.
func (s *PaymentService) finish(pending *models.PendingPayment, record *PaymentOutcomeRecord) {
	ctx := context.Background()

	raw, err := json.Marshal(record)
	if err != nil {
		s.log.Error("finish: json.Marshal", zap.Error(err))
		return
	}
	if err := s.Redis.Set(ctx, outcomeKey(pending.SessionID), raw, 15*time.Minute).Err(); err != nil {
		s.log.Error("finish: redis.Set", zap.Error(err))
	}
	s.clearPending(ctx, pending.SessionID)
	s.notify(pending.UserID, record)
}

func (s *PaymentService) markPending(ctx context.Context, pending *models.PendingPayment) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("markPending: json.Marshal: %w", err)
	}
	// No TTL: the marker must survive until a terminal outcome.
	if err := s.Redis.Set(ctx, pendingKey(pending.SessionID), raw, 0).Err(); err != nil {
		return fmt.Errorf("markPending: redis.Set: %w", err)
	}
	if err := s.Redis.SAdd(ctx, pendingSetKey, pending.SessionID).Err(); err != nil {
		return fmt.Errorf("markPending: redis.SAdd: %w", err)
	}
	return nil
}

func (s *PaymentService) clearPending(ctx context.Context, sessionID string) {
	_ = s.Redis.Del(ctx, pendingKey(sessionID)).Err()
	_ = s.Redis.SRem(ctx, pendingSetKey, sessionID).Err()
}

func (s *PaymentService) notify(userID string, record *PaymentOutcomeRecord) {
	if s.pn == nil {
		return
	}

	messageType := "payment_failed"
	if record.Status == models.PaymentCompleted {
		messageType = "payment_success"
	}

	channel := fmt.Sprintf("user-%s", userID)
	s.pn.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":     messageType,
			"event_id": record.EventID,
		}).
		Execute()
}

// UploadLocalOrder submits a purchase-order document instead of an
// online payment. Success is synchronous; the confirmation snapshot
// is stored immediately.
func (s *PaymentService) UploadLocalOrder(ctx context.Context, session *Session, req *gateway.FPXPaymentRequest, filename string, size int64, document io.Reader) (*Confirmation, error) {
	if errs := validateLocalOrder(filename, size); len(errs) > 0 {
		return nil, errs
	}

	state, err := s.gw.UploadLocalOrder(ctx, session.Token, req, filename, document)
	if err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: %w", err)
	}
	if err := s.bookings.StoreConfirmation(ctx, session.ID, state.Booking, state.Event); err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: %w", err)
	}
	return &Confirmation{Booking: state.Booking, Event: state.Event}, nil
}

func validateLocalOrder(filename string, size int64) ValidationErrors {
	errs := ValidationErrors{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".doc", ".docx":
	default:
		errs["document"] = "only PDF or DOC documents are accepted"
	}
	if size > MaxLocalOrderSize {
		errs["document"] = "document exceeds the 10 MB limit"
	}
	return errs
}
