package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/PoluyanbIch/exambot/internal/metrics"
)

const minNameLength = 2

// ServiceOptions tunes quiz behaviour.
type ServiceOptions struct {
	Shuffle        bool
	AnswersPreview int
}

// QuizService is the per-user session state machine. Every method handles
// one event for one user and returns the reply to send plus the error class,
// if any. The reply is meaningful even when err is non-nil.
type QuizService struct {
	users     UserRepository
	answers   AnswerLog
	questions QuestionSetRepository
	sessions  SessionStore
	recorder  *AnswerRecorder
	ingestor  *Ingestor
	admin     AdminGate
	opts      ServiceOptions
	logger    zerolog.Logger
}

func NewQuizService(
	users UserRepository,
	answers AnswerLog,
	questions QuestionSetRepository,
	sessions SessionStore,
	recorder *AnswerRecorder,
	ingestor *Ingestor,
	admin AdminGate,
	opts ServiceOptions,
	logger zerolog.Logger,
) *QuizService {
	if opts.AnswersPreview <= 0 {
		opts.AnswersPreview = 20
	}
	return &QuizService{
		users:     users,
		answers:   answers,
		questions: questions,
		sessions:  sessions,
		recorder:  recorder,
		ingestor:  ingestor,
		admin:     admin,
		opts:      opts,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

// IsAdmin exposes the capability check to the transport.
func (s *QuizService) IsAdmin(id int64) bool {
	return s.admin.IsAdmin(id)
}

// SessionCount returns the number of live sessions.
func (s *QuizService) SessionCount() int {
	return s.sessions.Len()
}

// Register starts the registration flow unless the user already exists.
func (s *QuizService) Register(ctx context.Context, from Sender) (Reply, error) {
	user, ok, err := s.users.Find(ctx, from.ID)
	if err != nil {
		return textReply("❌ Could not check your registration right now. Please try again later."),
			fmt.Errorf("%w: find user: %w", ErrPersistenceFailure, err)
	}
	if ok {
		return textReply(fmt.Sprintf("✅ %s, you are already registered.", user.Name)).
			withToast("✅ You are already registered."), ErrAlreadyRegistered
	}

	s.sessions.Put(from.ID, Registering{})
	return textReply("Enter your name:"), nil
}

// AdminLogin asks for the admin id.
func (s *QuizService) AdminLogin(from Sender) Reply {
	s.sessions.Put(from.ID, AdminAuthenticating{})
	return textReply("Enter the admin ID:")
}

// Cancel drops whatever the user was doing.
func (s *QuizService) Cancel(from Sender) Reply {
	if _, ok := s.sessions.Get(from.ID); !ok {
		return textReply("Nothing to cancel.")
	}
	s.sessions.Delete(from.ID)
	return textReply("❎ Cancelled. Send /start to see the menu.")
}

// HandleText routes free text according to the sender's session.
func (s *QuizService) HandleText(ctx context.Context, from Sender, text string) (Reply, error) {
	session, ok := s.sessions.Get(from.ID)
	if !ok {
		return Reply{}, nil
	}

	switch sess := session.(type) {
	case AdminAuthenticating:
		return s.submitAdminID(from, text)
	case Authoring:
		return s.submitQuestionText(ctx, from, text)
	case Registering:
		return s.submitName(ctx, from, text)
	case Answering:
		return s.submitAnswer(ctx, from, sess, text)
	default:
		s.logger.Warn().Str("mode", string(session.Mode())).Int64("user_id", from.ID).Msg("unexpected session variant")
		s.sessions.Delete(from.ID)
		return Reply{}, nil
	}
}

func (s *QuizService) submitAdminID(from Sender, text string) (Reply, error) {
	s.sessions.Delete(from.ID)

	candidate, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || !s.admin.IsAdmin(candidate) {
		return textReply("❌ Wrong ID! Only the admin can log in."), ErrUnauthorizedAction
	}
	return textReply("✅ You are logged in as admin!").withButtons(adminMenuButtons()...), nil
}

func (s *QuizService) submitQuestionText(ctx context.Context, from Sender, text string) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		s.sessions.Delete(from.ID)
		return adminOnly(), ErrUnauthorizedAction
	}

	questions, err := FromText(text)
	if err != nil {
		metrics.Ingestions.WithLabelValues("text", "empty").Inc()
		return textReply("⚠️ No questions found. Put each question on its own line and number it " +
			"(for example \"1. Question\"), or send /cancel."), err
	}

	if err := s.questions.Replace(ctx, questions); err != nil {
		metrics.Ingestions.WithLabelValues("text", "error").Inc()
		return textReply("❌ Could not save the questions. Please send them again."),
			fmt.Errorf("%w: replace questions: %w", ErrPersistenceFailure, err)
	}

	s.sessions.Delete(from.ID)
	metrics.Ingestions.WithLabelValues("text", "ok").Inc()
	return textReply(fmt.Sprintf("✅ %d questions saved from text!", len(questions))).
		withButtons(backToAdminMenu()), nil
}

func (s *QuizService) submitName(ctx context.Context, from Sender, text string) (Reply, error) {
	name := strings.TrimSpace(text)
	if utf8.RuneCountInString(name) < minNameLength {
		return textReply("Your name is too short, please write it in full."), ErrInvalidName
	}

	user := User{ID: from.ID, Name: name, Username: from.Username}
	if err := s.users.Save(ctx, user); err != nil {
		return textReply("❌ Could not save your registration. Please send your name again."),
			fmt.Errorf("%w: save user: %w", ErrPersistenceFailure, err)
	}

	s.sessions.Delete(from.ID)
	return textReply(fmt.Sprintf("✅ %s, you are registered! Now send /play.", name)), nil
}

func (s *QuizService) submitAnswer(ctx context.Context, from Sender, sess Answering, text string) (Reply, error) {
	if !sess.AwaitingAnswer {
		return textReply("⚠️ Please press the '➡️ Next question' button below.").
			withButtons(row(nextButton(from.ID, sess.Current))), nil
	}

	err := s.recorder.Record(ctx, from, sess.Question(), strings.TrimSpace(text))

	sess.AwaitingAnswer = false
	s.sessions.Put(from.ID, sess)

	return textReply("✅ Your answer has been accepted.").
		withButtons(row(nextButton(from.ID, sess.Current))), err
}

// Play snapshots the active question set into a new answering session.
func (s *QuizService) Play(ctx context.Context, from Sender) (Reply, error) {
	_, ok, err := s.users.Find(ctx, from.ID)
	if err != nil {
		return textReply("❌ Could not check your registration right now. Please try again later."),
			fmt.Errorf("%w: find user: %w", ErrPersistenceFailure, err)
	}
	if !ok {
		return textReply("❌ Register first with /register.").withToast("❌ Register first."), ErrNotRegistered
	}

	questions, err := s.questions.Current(ctx)
	if err != nil {
		return textReply("❌ Could not load the questions right now. Please try again later."),
			fmt.Errorf("%w: load questions: %w", ErrPersistenceFailure, err)
	}
	if len(questions) == 0 {
		return textReply("🚫 There are no questions yet. Wait for the admin to add them.").
			withToast("🚫 No questions available."), ErrNoActiveQuestionSet
	}

	sess := Answering{Questions: snapshotQuestions(questions, s.opts.Shuffle)}
	s.sessions.Put(from.ID, sess)

	text := fmt.Sprintf("🧾 The quiz has started. Questions: %d\n\n%s", len(sess.Questions), questionText(sess))
	return textReply(text).withButtons(row(answerButton(from.ID, 0))), nil
}

// Answer opens the answer prompt for the current question.
func (s *QuizService) Answer(from Sender, ref ControlRef) (Reply, error) {
	sess, reply, err := s.control(from, ref)
	if err != nil {
		return reply, err
	}

	if sess.AwaitingAnswer {
		return Reply{Toast: "✍️ Already waiting for your answer."}, nil
	}

	sess.AwaitingAnswer = true
	s.sessions.Put(from.ID, sess)
	return textReply("✍️ Write your answer:").withToast("✍️ Write your answer..."), nil
}

// Next advances to the following question or finishes the quiz.
func (s *QuizService) Next(from Sender, ref ControlRef) (Reply, error) {
	sess, reply, err := s.control(from, ref)
	if err != nil {
		return reply, err
	}

	if sess.Current+1 >= len(sess.Questions) {
		s.sessions.Delete(from.ID)
		return textReply("🎉 You have answered all the questions!").withToast("🎉 Done!"), nil
	}

	sess.Current++
	sess.AwaitingAnswer = false
	s.sessions.Put(from.ID, sess)
	return textReply(questionText(sess)).
		withButtons(row(answerButton(from.ID, sess.Current))).
		withToast("Moving on to the next question..."), nil
}

// control re-validates a button press against the live session: the caller
// must own the session and the button must belong to the current question.
func (s *QuizService) control(from Sender, ref ControlRef) (Answering, Reply, error) {
	if ref.Owner != from.ID {
		return Answering{}, Reply{Toast: "This button is not for you!"}, ErrUnauthorizedAction
	}

	session, ok := s.sessions.Get(from.ID)
	sess, answering := session.(Answering)
	if !ok || !answering {
		return Answering{}, textReply("🚫 This button is no longer valid. Send /play to start again.").
			withToast("🚫 Send /play first!"), ErrStaleSessionReference
	}
	if ref.Index != sess.Current {
		return Answering{}, textReply("🚫 That button belongs to another question. Use the buttons under the latest message.").
			withToast("🚫 Outdated button."), ErrStaleSessionReference
	}
	return sess, Reply{}, nil
}

// AdminMenu shows the admin actions.
func (s *QuizService) AdminMenu(from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}
	return textReply("✅ Admin menu:").withButtons(adminMenuButtons()...), nil
}

// AddQuestionMenu lets the admin pick between file and text ingestion.
func (s *QuizService) AddQuestionMenu(from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}
	return textReply("Choose how to add questions:").withButtons(
		row(Button{Label: "📄 From a file (PDF/image/TXT)", Data: ActionAddFileQuestions}),
		row(Button{Label: "📝 From text", Data: ActionAddTextQuestions}),
		row(Button{Label: "🔙 Admin menu", Data: ActionAdminMenu}),
	), nil
}

// BeginTextAuthoring waits for pasted question text. It replaces any pending
// session of the admin, including a half-finished file upload flow.
func (s *QuizService) BeginTextAuthoring(from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}
	s.sessions.Put(from.ID, Authoring{})
	return textReply("Send the questions as text. Put every question on a new line and number it " +
		"(for example:\n1. First question\n2. Second question)."), nil
}

// BeginFileAuthoring asks for an upload and drops a pending text authoring state.
func (s *QuizService) BeginFileAuthoring(from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}
	s.dropAuthoring(from.ID)
	return textReply("📎 Upload a PDF, an image (.jpg, .png) or a .txt file with the questions."), nil
}

// UploadNotice is sent to the admin before a potentially slow extraction.
func UploadNotice(ref FileRef) Reply {
	ext := strings.ToUpper(strings.TrimPrefix(ref.Ext(), "."))
	if ext == "" {
		ext = "The"
	}
	return textReply(fmt.Sprintf("⏳ %s file is being downloaded and analysed...", ext))
}

// IngestFile replaces the question set with the questions found in an upload.
func (s *QuizService) IngestFile(ctx context.Context, from Sender, ref FileRef) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return textReply("❌ Only the admin can upload files."), ErrUnauthorizedAction
	}

	questions, err := s.ingestor.FromFile(ctx, ref)
	switch {
	case errors.Is(err, ErrNoQuestionsFound):
		metrics.Ingestions.WithLabelValues("file", "empty").Inc()
		return textReply("⚠️ The file could not be parsed or contains no questions. " +
			"Make sure the questions are numbered (for example \"1. Question\")."), err
	case err != nil:
		metrics.Ingestions.WithLabelValues("file", "error").Inc()
		return textReply("❌ Error: the file could not be processed. Please try again or send the questions as text."), err
	}

	if err := s.questions.Replace(ctx, questions); err != nil {
		metrics.Ingestions.WithLabelValues("file", "error").Inc()
		return textReply("❌ Could not save the questions. Please upload the file again."),
			fmt.Errorf("%w: replace questions: %w", ErrPersistenceFailure, err)
	}

	s.dropAuthoring(from.ID)
	metrics.Ingestions.WithLabelValues("file", "ok").Inc()
	return textReply(fmt.Sprintf("✅ %d questions saved from the file.", len(questions))).
		withButtons(backToAdminMenu()), nil
}

func (s *QuizService) dropAuthoring(userID int64) {
	if session, ok := s.sessions.Get(userID); ok && session.Mode() == ModeAuthoring {
		s.sessions.Delete(userID)
	}
}

// ShowUsers lists registered users.
func (s *QuizService) ShowUsers(ctx context.Context, from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return textReply("❌ Could not load users."), fmt.Errorf("%w: list users: %w", ErrPersistenceFailure, err)
	}
	if len(users) == 0 {
		return textReply("👥 No users yet."), nil
	}

	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("🆔 %d - %s (@%s)", u.ID, u.Name, orNA(u.Username)))
	}
	return textReply(strings.Join(lines, "\n")), nil
}

// ShowAnswers previews the most recent answers.
func (s *QuizService) ShowAnswers(ctx context.Context, from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}

	records, err := s.answers.Recent(ctx, s.opts.AnswersPreview)
	if err != nil {
		return textReply("❌ Could not load answers."), fmt.Errorf("%w: recent answers: %w", ErrPersistenceFailure, err)
	}
	if len(records) == 0 {
		return textReply("📋 No answers yet."), nil
	}

	parts := make([]string, 0, len(records))
	for _, a := range records {
		parts = append(parts, fmt.Sprintf("👤 %s\n❓ %s\n💬 %s", a.Name, a.Question, a.Answer))
	}
	header := fmt.Sprintf("📋 Last %d answers:\n\n", len(records))
	return textReply(header + strings.Join(parts, "\n\n--- o ---\n\n")), nil
}

// ClearQuestions empties the active question set.
func (s *QuizService) ClearQuestions(ctx context.Context, from Sender) (Reply, error) {
	if !s.admin.IsAdmin(from.ID) {
		return adminOnly(), ErrUnauthorizedAction
	}
	if err := s.questions.Clear(ctx); err != nil {
		return textReply("❌ Could not clear the questions."), fmt.Errorf("%w: clear questions: %w", ErrPersistenceFailure, err)
	}
	return textReply("🗑 All questions have been cleared."), nil
}

func questionText(sess Answering) string {
	return fmt.Sprintf("❓ Question %d/%d\n\n%s", sess.Current+1, len(sess.Questions), sess.Question())
}

func adminOnly() Reply {
	return textReply("❌ Admin only.").withToast("❌ Admin only.")
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
