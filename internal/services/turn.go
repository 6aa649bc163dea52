package services

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutormind/tutormind-backend/internal/clients/gcp"
	"github.com/tutormind/tutormind-backend/internal/clients/openai"
	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/intent"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/realtime"
	"github.com/tutormind/tutormind-backend/internal/viz"
)

const (
	ErrCodeValidation  = "validation_error"
	ErrCodeUnavailable = "temporarily_unavailable"
)

const tutorSystemPrompt = `You are a patient school tutor. Answer the student's question clearly and at
their level, in the language the question was asked in (English or Russian).
Keep answers short and concrete. Do not mention images, drawings or files.`

// SubmitTurnRequest is the single inbound operation. At least one of Text,
// PhotoRef, AudioRef must be present.
type SubmitTurnRequest struct {
	Text          string `json:"text"`
	PhotoRef      string `json:"photo_ref"`
	AudioRef      string `json:"audio_ref"`
	AudioMimeType string `json:"audio_mime_type"`
}

func (r *SubmitTurnRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" &&
		strings.TrimSpace(r.PhotoRef) == "" &&
		strings.TrimSpace(r.AudioRef) == "" {
		return fmt.Errorf("one of text, photo_ref or audio_ref is required")
	}
	return nil
}

// TurnEventSink receives the live events of one turn. *realtime.TurnStream is
// the production implementation; tests use a recorder.
type TurnEventSink interface {
	Delta(text string)
	Artifact(p realtime.ArtifactPayload)
	Quota(p realtime.QuotaPayload)
	Done(p realtime.DonePayload)
	Error(code, message string)
}

// Repos groups the stores the turn transaction writes to.
type TurnRepos struct {
	Messages interface {
		Create(ctx context.Context, tx *gorm.DB, rows []*domain.ChatMessage) error
	}
	Turns interface {
		Create(ctx context.Context, tx *gorm.DB, row *domain.ChatTurn) error
	}
}

type TurnService interface {
	// SubmitTurn drives one turn end to end and always leaves exactly one
	// terminal event (done or error) on the sink, unless the client
	// disconnected first.
	SubmitTurn(ctx context.Context, user *domain.User, req SubmitTurnRequest, sink TurnEventSink)
}

type turnService struct {
	log *logger.Logger
	db  *gorm.DB

	media        MediaService
	planner      *viz.Planner
	quota        QuotaService
	completion   openai.Client
	renderer     viz.Renderer
	bucket       gcp.BucketService
	synthesizer  Synthesizer
	gamification GamificationService
	notifier     TurnNotifier
	repos        TurnRepos
}

func NewTurnService(
	db *gorm.DB,
	media MediaService,
	planner *viz.Planner,
	quota QuotaService,
	completion openai.Client,
	renderer viz.Renderer,
	bucket gcp.BucketService,
	synthesizer Synthesizer,
	gamification GamificationService,
	notifier TurnNotifier,
	turnRepos TurnRepos,
	log *logger.Logger,
) TurnService {
	return &turnService{
		log:          log.With("service", "TurnService"),
		db:           db,
		media:        media,
		planner:      planner,
		quota:        quota,
		completion:   completion,
		renderer:     renderer,
		bucket:       bucket,
		synthesizer:  synthesizer,
		gamification: gamification,
		notifier:     notifier,
		repos:        turnRepos,
	}
}

func (s *turnService) SubmitTurn(ctx context.Context, user *domain.User, req SubmitTurnRequest, sink TurnEventSink) {
	if err := req.Validate(); err != nil {
		sink.Error(ErrCodeValidation, err.Error())
		return
	}
	if user == nil || user.ID == uuid.Nil {
		sink.Error(ErrCodeValidation, "unknown user")
		return
	}
	startedAt := time.Now().UTC()

	text, err := s.resolveText(ctx, req)
	if err != nil {
		s.log.Warn("input resolution failed", "user_id", user.ID, "error", err)
		sink.Error(ErrCodeValidation, "could not read the submitted input")
		return
	}

	in := intent.Parse(text)
	plan := s.planner.Plan(in)

	decision, err := s.quota.Admit(ctx, user)
	if err != nil {
		s.log.Error("quota admission failed", "user_id", user.ID, "error", err)
		sink.Error(ErrCodeUnavailable, "The tutor is temporarily unavailable. Please try again.")
		return
	}
	if !decision.Allowed {
		sink.Error(decision.Code, decision.Message)
		return
	}

	fullText, err := s.generate(ctx, text, plan, sink)
	if err != nil {
		if ctx.Err() != nil {
			// Client went away mid-stream: drop the turn entirely.
			s.log.Info("turn abandoned by client", "user_id", user.ID)
			return
		}
		s.log.Error("generation hard-failed", "user_id", user.ID, "error", err)
		sink.Error(ErrCodeUnavailable, "The tutor is temporarily unavailable. Please try again.")
		return
	}
	if ctx.Err() != nil {
		s.log.Info("turn abandoned by client", "user_id", user.ID)
		return
	}

	plan = s.planner.Refine(plan, fullText)

	turnID := uuid.New()
	artifact := s.renderArtifact(ctx, user.ID, turnID, plan)
	if artifact != nil {
		sink.Artifact(*artifact)
	}

	result := s.synthesizer.Synthesize(fullText, plan)

	xpAwarded, quotaPayload := s.persist(ctx, user, turnID, text, result, artifact, startedAt)
	if quotaPayload != nil && quotaPayload.LimitJustReached {
		sink.Quota(*quotaPayload)
	}

	done := realtime.DonePayload{
		TurnID:    turnID.String(),
		FinalText: result.FinalText,
		FullText:  result.FullText,
		Artifact:  artifact,
		XPAwarded: xpAwarded,
		Quota:     quotaPayload,
	}
	sink.Done(done)
	s.notifier.TurnCompleted(user.ID, turnID, xpAwarded)
}

func (s *turnService) resolveText(ctx context.Context, req SubmitTurnRequest) (string, error) {
	if t := strings.TrimSpace(req.Text); t != "" {
		return t, nil
	}
	if strings.TrimSpace(req.AudioRef) != "" {
		return s.media.ResolveAudio(ctx, req.AudioRef, req.AudioMimeType)
	}
	return s.media.ResolvePhoto(ctx, req.PhotoRef)
}

// generate runs the stream-first completion with the one-shot non-streaming
// fallback on transport failure.
func (s *turnService) generate(ctx context.Context, text string, plan *viz.Plan, sink TurnEventSink) (string, error) {
	ctx, span := Tracer().Start(ctx, "turn.generate")
	defer span.End()

	forward := newDeltaForwarder(sink, plan.ReplacesText())
	full, err := s.completion.StreamText(ctx, tutorSystemPrompt, text, forward.push)
	if err == nil {
		forward.flush()
		return full, nil
	}
	if !openai.IsTransportError(err) || ctx.Err() != nil {
		return "", err
	}

	s.log.Warn("stream failed, falling back to non-streaming call", "error", err)
	full, fbErr := s.completion.GenerateText(ctx, tutorSystemPrompt, text)
	if fbErr != nil {
		return "", fmt.Errorf("fallback after stream failure: %w", fbErr)
	}
	forward.pushWhole(full)
	forward.flush()
	return full, nil
}

var mulRowLineRe = regexp.MustCompile(`^\s*\d+\s*[×x*]\s*\d+\s*=\s*\d+\s*$`)

// deltaForwarder pushes fragments to the live channel in receipt order. When
// a table artifact will replace the text it holds fragments back until a full
// line is available and drops lines that are literal "N×M=K" rows, so the
// client never flashes content the image is about to replace.
type deltaForwarder struct {
	sink     TurnEventSink
	suppress bool
	pending  bytes.Buffer
}

func newDeltaForwarder(sink TurnEventSink, suppress bool) *deltaForwarder {
	return &deltaForwarder{sink: sink, suppress: suppress}
}

func (f *deltaForwarder) push(delta string) {
	if !f.suppress {
		f.sink.Delta(delta)
		return
	}
	f.pending.WriteString(delta)
	for {
		line, rest, found := strings.Cut(f.pending.String(), "\n")
		if !found {
			return
		}
		f.pending.Reset()
		f.pending.WriteString(rest)
		if !mulRowLineRe.MatchString(line) {
			f.sink.Delta(line + "\n")
		}
	}
}

func (f *deltaForwarder) pushWhole(text string) {
	f.push(text)
}

func (f *deltaForwarder) flush() {
	if !f.suppress {
		return
	}
	line := f.pending.String()
	f.pending.Reset()
	if line != "" && !mulRowLineRe.MatchString(line) {
		f.sink.Delta(line)
	}
}

// renderArtifact renders, uploads and describes the planned artifact. Any
// failure downgrades the turn to text-only rather than failing it.
func (s *turnService) renderArtifact(ctx context.Context, userID, turnID uuid.UUID, plan *viz.Plan) *realtime.ArtifactPayload {
	if !plan.HasArtifact() {
		return nil
	}
	spec, err := s.planner.Spec(plan)
	if err != nil || spec == nil {
		s.log.Warn("artifact spec failed", "error", err)
		return nil
	}
	png, err := s.renderer.Render(spec)
	if err != nil {
		s.log.Warn("artifact render failed", "error", err)
		return nil
	}

	key := fmt.Sprintf("chat-artifacts/%s/%s.png", userID, turnID)
	if err := s.bucket.UploadFile(ctx, key, "image/png", bytes.NewReader(png)); err != nil {
		s.log.Warn("artifact upload failed", "key", key, "error", err)
		return nil
	}
	return &realtime.ArtifactPayload{
		Kind: string(spec.Kind),
		URL:  s.bucket.GetPublicURL(key),
	}
}

// persist runs the single turn transaction. Failure rolls everything back
// and is absorbed; delivered content stands either way.
func (s *turnService) persist(
	ctx context.Context,
	user *domain.User,
	turnID uuid.UUID,
	userText string,
	result SynthesisResult,
	artifact *realtime.ArtifactPayload,
	startedAt time.Time,
) (int, *realtime.QuotaPayload) {
	ctx, span := Tracer().Start(ctx, "turn.persist")
	defer span.End()

	var (
		xpAwarded        int
		newTotal         int
		limitJustReached bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		newTotal, limitJustReached, err = s.quota.Increment(ctx, tx, user)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		userMsg := &domain.ChatMessage{
			ID:      uuid.New(),
			UserID:  user.ID,
			Role:    domain.RoleUser,
			Content: userText,
		}
		assistantMsg := &domain.ChatMessage{
			ID:      uuid.New(),
			UserID:  user.ID,
			Role:    domain.RoleAssistant,
			Content: result.FinalText,
		}
		if artifact != nil {
			assistantMsg.ArtifactKind = artifact.Kind
			assistantMsg.ArtifactURL = artifact.URL
		}
		if err := s.repos.Messages.Create(ctx, tx, []*domain.ChatMessage{userMsg, assistantMsg}); err != nil {
			return err
		}

		turn := &domain.ChatTurn{
			ID:                 turnID,
			UserID:             user.ID,
			UserMessageID:      userMsg.ID,
			AssistantMessageID: assistantMsg.ID,
			UserText:           userText,
			AssistantText:      result.FinalText,
			FullText:           result.FullText,
			StartedAt:          &startedAt,
			CompletedAt:        &now,
		}
		if artifact != nil {
			turn.ArtifactKind = artifact.Kind
			turn.ArtifactURL = artifact.URL
		}
		if err := s.repos.Turns.Create(ctx, tx, turn); err != nil {
			return err
		}

		xpAwarded, err = s.gamification.AwardTurnXP(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		s.log.Error("turn persistence failed, rolled back", "user_id", user.ID, "turn_id", turnID, "error", err)
		return 0, nil
	}

	var quotaPayload *realtime.QuotaPayload
	if !user.Unlimited() {
		quotaPayload = &realtime.QuotaPayload{
			Used:             newTotal,
			Limit:            s.quota.Limit(),
			LimitJustReached: limitJustReached,
		}
	}
	if limitJustReached {
		go s.notifier.QuotaLimitReached(user.ID, user.Email, newTotal, s.quota.Limit())
	}
	return xpAwarded, quotaPayload
}
