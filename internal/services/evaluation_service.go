package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thomas-vilte/evalusense/internal/ai"
	"github.com/thomas-vilte/evalusense/internal/cache"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/prompt"
	"github.com/thomas-vilte/evalusense/internal/vcs"
)

// generatedAtLayout matches the ISO-8601 timestamps already stored in caches.
const generatedAtLayout = "2006-01-02T15:04:05.000Z"

// Session carries everything an operation needs from the caller.
type Session struct {
	Username      string
	Token         string
	Repository    string
	GenerationKey string
	Instructions  models.GradingInstructions
	UseEncoded    bool
}

func (s Session) validate() error {
	if strings.TrimSpace(s.Username) == "" {
		return domainErrors.ErrUsernameMissing
	}
	if strings.TrimSpace(s.Repository) == "" {
		return domainErrors.ErrRepositoryMissing
	}
	return nil
}

type recordKey struct {
	username   string
	repository string
}

func (s Session) key() recordKey {
	return recordKey{username: s.Username, repository: s.Repository}
}

// LoadResult is the outcome of a full branch refresh. Failed lists the
// branches whose prompt could not be built, in processing order.
type LoadResult struct {
	Branches []models.BranchRef
	Records  []models.BranchPromptRecord
	Failed   []string
}

// ExecuteSummary is the outcome of ExecuteAll.
type ExecuteSummary struct {
	Executed []string
	Failed   []string
}

type EvaluationService struct {
	clientProvider vcs.RepositoryClientProvider
	generator      ai.Generator
	store          cache.Store
	extensions     []string
	filter         *vcs.SourceFilter
	now            func() time.Time

	// mu guards the fields below. Store writes happen under mu so the
	// saved list of a key is always the in-memory list of that same key.
	mu      sync.Mutex
	current recordKey
	lists   map[recordKey][]models.BranchPromptRecord
	running map[runningKey]bool
}

// runningKey identifies one branch of one (user, repository) list. Running
// state outlives the list it was set on, since a refresh replaces lists.
type runningKey struct {
	list   recordKey
	branch string
}

type EvaluationOption func(*EvaluationService)

func WithRepositoryClientProvider(p vcs.RepositoryClientProvider) EvaluationOption {
	return func(s *EvaluationService) {
		s.clientProvider = p
	}
}

func WithGenerator(g ai.Generator) EvaluationOption {
	return func(s *EvaluationService) {
		s.generator = g
	}
}

func WithStore(store cache.Store) EvaluationOption {
	return func(s *EvaluationService) {
		s.store = store
	}
}

func WithSourceExtensions(exts []string) EvaluationOption {
	return func(s *EvaluationService) {
		s.extensions = exts
	}
}

func WithClock(now func() time.Time) EvaluationOption {
	return func(s *EvaluationService) {
		s.now = now
	}
}

func NewEvaluationService(opts ...EvaluationOption) (*EvaluationService, error) {
	s := &EvaluationService{
		extensions: []string{".java"},
		now:        time.Now,
		lists:      make(map[recordKey][]models.BranchPromptRecord),
		running:    make(map[runningKey]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.clientProvider == nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeInternal, "repository client provider is required", nil)
	}
	if s.store == nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeInternal, "prompt store is required", nil)
	}

	filter, err := vcs.NewSourceFilter(s.extensions)
	if err != nil {
		return nil, domainErrors.ErrInvalidConfig.
			WithError(err).
			WithContext("source_extensions", strings.Join(s.extensions, ","))
	}
	s.filter = filter

	return s, nil
}

// ListRepositories returns the user's repositories sorted by name.
func (s *EvaluationService) ListRepositories(ctx context.Context, session Session) ([]models.Repository, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(session.Username) == "" {
		return nil, domainErrors.ErrUsernameMissing
	}

	client := s.clientProvider(session.Username, session.Token)
	repos, err := client.ListRepositories(ctx)
	if err != nil {
		log.Error("failed to list repositories",
			"error", err,
			"user", session.Username)
		return nil, err
	}

	vcs.SortRepositories(repos)
	return repos, nil
}

// LoadBranches shows the cached records first, then rebuilds the prompt of
// every submission branch and saves the list. A failing branch is reported
// and skipped. When only the cache write fails the complete result is
// returned together with the error.
func (s *EvaluationService) LoadBranches(ctx context.Context, session Session, progress models.ProgressFunc) (LoadResult, error) {
	if err := session.validate(); err != nil {
		return LoadResult{}, err
	}

	cached := s.store.Load(session.Username, session.Repository)

	s.mu.Lock()
	s.current = session.key()
	s.installLocked(session.key(), copyRecords(cached))
	s.mu.Unlock()

	return s.refresh(ctx, session, cached, progress)
}

// Rebuild drops the in-memory records and refreshes every branch without
// reading the cache.
func (s *EvaluationService) Rebuild(ctx context.Context, session Session, progress models.ProgressFunc) (LoadResult, error) {
	if err := session.validate(); err != nil {
		return LoadResult{}, err
	}

	s.mu.Lock()
	s.current = session.key()
	s.installLocked(session.key(), nil)
	s.mu.Unlock()

	return s.refresh(ctx, session, nil, progress)
}

// refresh builds every branch into a working copy of base and installs it
// as the list of the session once the loop is over, so the shared list is
// never half built.
func (s *EvaluationService) refresh(ctx context.Context, session Session, base []models.BranchPromptRecord, progress models.ProgressFunc) (LoadResult, error) {
	ctx = logger.With(ctx,
		"run_id", uuid.NewString(),
		"repo", session.Repository)
	log := logger.FromContext(ctx)
	start := time.Now()

	client := s.clientProvider(session.Username, session.Token)

	all, err := client.ListBranches(ctx, session.Repository)
	if err != nil {
		log.Error("failed to list branches",
			"error", err,
			"stage", "list")
		return LoadResult{}, err
	}

	branches := vcs.FilterSubmissionBranches(all)
	vcs.SortBranches(branches)

	log.Info("submission branches listed",
		"count", len(branches),
		"total", len(all))

	progress.Emit(models.ProgressEvent{
		Type: models.ProgressBranchesListed,
		Data: map[string]interface{}{"count": len(branches)},
	})

	working := copyRecords(base)
	rebuilt := make(map[string]bool, len(branches))
	var failed []string
	var runErr error
	for _, b := range branches {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		record, err := s.buildBranch(ctx, client, session, b.Name, progress)
		if err != nil {
			failed = append(failed, b.Name)
			progress.Emit(models.ProgressEvent{
				Type:    models.ProgressBranchFailed,
				Branch:  b.Name,
				Message: err.Error(),
			})
			continue
		}
		working = upsertRecord(working, record)
		rebuilt[b.Name] = true
	}

	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}

	s.mu.Lock()
	key := session.key()
	// Records that were not rebuilt may have received a verdict while the
	// loop ran; the shared list holds the newest version of those.
	for i, r := range working {
		if rebuilt[r.Branch] {
			continue
		}
		if j := indexOf(s.lists[key], r.Branch); j >= 0 {
			working[i] = s.lists[key][j]
		}
	}
	s.installLocked(key, orderRecords(working, names))
	records := copyRecords(s.lists[key])
	saveErr := s.saveLocked(session)
	s.mu.Unlock()

	result := LoadResult{
		Branches: branches,
		Records:  records,
		Failed:   failed,
	}

	if saveErr != nil {
		log.Error("failed to save prompt cache",
			"error", saveErr,
			"stage", "save")
		if runErr == nil {
			runErr = saveErr
		}
		return result, runErr
	}

	progress.Emit(models.ProgressEvent{
		Type: models.ProgressCacheSaved,
		Data: map[string]interface{}{"count": len(records)},
	})

	log.Info("branch prompts refreshed",
		"count", len(records),
		"failed", len(failed),
		"duration_ms", time.Since(start).Milliseconds())

	return result, runErr
}

// BuildBranchPrompt rebuilds the prompt of one branch and replaces its
// in-memory record. The cache is not written.
func (s *EvaluationService) BuildBranchPrompt(ctx context.Context, session Session, branch string) (models.BranchPromptRecord, error) {
	if err := session.validate(); err != nil {
		return models.BranchPromptRecord{}, err
	}

	s.mu.Lock()
	s.ensureLoadedLocked(session)
	s.mu.Unlock()

	client := s.clientProvider(session.Username, session.Token)
	record, err := s.buildBranch(ctx, client, session, branch, nil)
	if err != nil {
		return models.BranchPromptRecord{}, err
	}

	s.mu.Lock()
	s.lists[session.key()] = upsertRecord(s.lists[session.key()], record)
	s.mu.Unlock()

	return record, nil
}

func (s *EvaluationService) buildBranch(ctx context.Context, client vcs.RepositoryClient, session Session, branch string, progress models.ProgressFunc) (models.BranchPromptRecord, error) {
	log := logger.FromContext(ctx)

	progress.Emit(models.ProgressEvent{
		Type:   models.ProgressBranchStarted,
		Branch: branch,
	})

	record, err := s.buildRecord(ctx, client, session, branch, progress)
	if err != nil {
		log.Error("failed to build branch prompt",
			"error", err,
			"branch", branch,
			"repo", session.Repository,
			"stage", stageOf(err))
		return models.BranchPromptRecord{}, err
	}

	progress.Emit(models.ProgressEvent{
		Type:   models.ProgressBranchBuilt,
		Branch: branch,
		Data:   map[string]interface{}{"files": record.FileCount},
	})

	log.Debug("branch prompt built",
		"branch", branch,
		"files", record.FileCount,
		"prompt_length", len(record.Prompt))

	return record, nil
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stageOf(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return "unknown"
}

// buildRecord resolves the head commit, lists the source files of its
// tree, fetches them one by one and renders the prompt.
func (s *EvaluationService) buildRecord(ctx context.Context, client vcs.RepositoryClient, session Session, branch string, progress models.ProgressFunc) (models.BranchPromptRecord, error) {
	log := logger.FromContext(ctx)

	ref, err := client.GetBranch(ctx, session.Repository, branch)
	if err != nil {
		return models.BranchPromptRecord{}, &stageError{stage: "resolve", err: err}
	}

	tree, err := client.GetTree(ctx, session.Repository, ref.CommitSHA)
	if err != nil {
		return models.BranchPromptRecord{}, &stageError{stage: "enumerate", err: err}
	}

	if tree.Truncated {
		log.Warn("tree listing truncated, some files may be missing",
			"branch", branch,
			"sha", ref.CommitSHA)
		progress.Emit(models.ProgressEvent{
			Type:   models.ProgressTreeTruncated,
			Branch: branch,
		})
	}

	nodes := s.filter.Select(tree.Nodes)
	progress.Emit(models.ProgressEvent{
		Type:   models.ProgressFilesMatched,
		Branch: branch,
		Data:   map[string]interface{}{"count": len(nodes)},
	})

	files := make([]models.FilePayload, 0, len(nodes))
	for _, node := range nodes {
		content, err := client.GetFileContent(ctx, session.Repository, node.Path, branch)
		if err != nil {
			return models.BranchPromptRecord{}, &stageError{stage: "fetch", err: err}
		}

		payload, err := vcs.NewFilePayload(node.Path, content)
		if err != nil {
			log.Warn("file content is not valid base64, using raw text",
				"error", err,
				"branch", branch,
				"path", node.Path)
		}
		files = append(files, payload)
	}

	text, err := prompt.Build(prompt.Input{
		Repository:   session.Repository,
		Branch:       branch,
		Files:        files,
		Instructions: session.Instructions,
		UseEncoded:   session.UseEncoded,
	})
	if err != nil {
		return models.BranchPromptRecord{}, &stageError{stage: "build", err: err}
	}

	return models.BranchPromptRecord{
		Branch:      branch,
		Prompt:      text,
		FileCount:   len(files),
		GeneratedAt: s.now().UTC().Format(generatedAtLayout),
		Truncated:   tree.Truncated,
	}, nil
}

// Records returns a copy of the in-memory list of the last session used.
func (s *EvaluationService) Records() []models.BranchPromptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.lists[s.current])
}

// CachedRecords makes the cached list of the session current and returns a
// copy of it. Nothing is fetched from the hosting API.
func (s *EvaluationService) CachedRecords(session Session) ([]models.BranchPromptRecord, error) {
	if err := session.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.ensureLoadedLocked(session)), nil
}

// Execute submits the prompt of branch to the generator and stores the
// normalized verdict. Without a credential it fails before any call.
// Running is always cleared when Execute returns.
func (s *EvaluationService) Execute(ctx context.Context, session Session, branch string) (models.BranchPromptRecord, error) {
	if strings.TrimSpace(session.GenerationKey) == "" {
		return models.BranchPromptRecord{}, domainErrors.ErrAPIKeyMissing
	}
	if err := session.validate(); err != nil {
		return models.BranchPromptRecord{}, err
	}
	if s.generator == nil {
		return models.BranchPromptRecord{}, domainErrors.ErrGeminiUninitialized
	}

	log := logger.FromContext(ctx)
	key := session.key()

	s.mu.Lock()
	records := s.ensureLoadedLocked(session)
	idx := indexOf(records, branch)
	if idx < 0 {
		s.mu.Unlock()
		return models.BranchPromptRecord{}, domainErrors.ErrRecordNotFound.
			WithContext("branch", branch).
			WithContext("repo", session.Repository)
	}
	if s.running[runningKey{key, branch}] {
		s.mu.Unlock()
		return models.BranchPromptRecord{}, domainErrors.ErrExecutionInProgress.
			WithContext("branch", branch)
	}
	s.setRunningLocked(key, branch, true)
	promptText := records[idx].Prompt
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.setRunningLocked(key, branch, false)
		s.mu.Unlock()
	}()

	start := time.Now()
	log.Info("executing branch prompt",
		"branch", branch,
		"prompt_length", len(promptText))

	if err := s.generator.Initialize(ctx, session.GenerationKey); err != nil {
		log.Error("failed to initialize generator",
			"error", err,
			"branch", branch)
		return models.BranchPromptRecord{}, err
	}

	response, err := s.generator.GenerateContent(ctx, promptText)
	if err != nil {
		log.Error("failed to execute branch prompt",
			"error", err,
			"branch", branch,
			"duration_ms", time.Since(start).Milliseconds())
		return models.BranchPromptRecord{}, err
	}

	result := ai.NormalizeVerdict(response)
	if _, ok := ai.ParseVerdict(result); !ok && result != ai.NoResult {
		log.Warn("response is not a JSON verdict, storing the raw text",
			"error", domainErrors.ErrInvalidAIOutput,
			"branch", branch)
	}

	s.mu.Lock()
	current := s.lists[key]
	i := indexOf(current, branch)
	if i < 0 {
		s.mu.Unlock()
		// A rebuild removed the record while the prompt was running.
		log.Error("branch record disappeared while executing, verdict not saved",
			"branch", branch,
			"repo", session.Repository)
		return models.BranchPromptRecord{Branch: branch, Prompt: promptText, Result: result},
			domainErrors.ErrRecordNotFound.
				WithContext("branch", branch).
				WithContext("repo", session.Repository)
	}
	current[i].Result = result
	record := current[i]
	saveErr := s.saveLocked(session)
	s.mu.Unlock()

	record.Running = false

	log.Info("branch prompt executed",
		"branch", branch,
		"result_length", len(result),
		"duration_ms", time.Since(start).Milliseconds())

	if saveErr != nil {
		log.Error("failed to save prompt cache",
			"error", saveErr,
			"branch", branch)
		return record, saveErr
	}

	return record, nil
}

// ExecuteAll runs every record that has no result yet, one at a time.
// Credential and quota failures stop the run since every following call
// would fail the same way.
func (s *EvaluationService) ExecuteAll(ctx context.Context, session Session, progress models.ProgressFunc) (ExecuteSummary, error) {
	if strings.TrimSpace(session.GenerationKey) == "" {
		return ExecuteSummary{}, domainErrors.ErrAPIKeyMissing
	}

	records, err := s.CachedRecords(session)
	if err != nil {
		return ExecuteSummary{}, err
	}

	ctx = logger.With(ctx,
		"run_id", uuid.NewString(),
		"repo", session.Repository)

	var summary ExecuteSummary
	for _, r := range records {
		if r.HasResult() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		progress.Emit(models.ProgressEvent{
			Type:   models.ProgressExecuteStarted,
			Branch: r.Branch,
		})

		if _, err := s.Execute(ctx, session, r.Branch); err != nil {
			summary.Failed = append(summary.Failed, r.Branch)
			progress.Emit(models.ProgressEvent{
				Type:    models.ProgressExecuteFailed,
				Branch:  r.Branch,
				Message: err.Error(),
			})
			if isFatalGenerationError(err) {
				return summary, err
			}
			continue
		}

		summary.Executed = append(summary.Executed, r.Branch)
		progress.Emit(models.ProgressEvent{
			Type:   models.ProgressExecuteDone,
			Branch: r.Branch,
		})
	}

	return summary, nil
}

func isFatalGenerationError(err error) bool {
	return errors.Is(err, domainErrors.ErrAPIKeyMissing) ||
		errors.Is(err, domainErrors.ErrGeminiAPIKeyInvalid) ||
		errors.Is(err, domainErrors.ErrGeminiQuotaExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ensureLoadedLocked makes the session current and returns its list,
// loading it from the store the first time the key is seen.
func (s *EvaluationService) ensureLoadedLocked(session Session) []models.BranchPromptRecord {
	key := session.key()
	s.current = key
	records, ok := s.lists[key]
	if !ok {
		records = s.store.Load(session.Username, session.Repository)
		s.lists[key] = records
	}
	return records
}

// installLocked replaces the list of key. Running flags follow the
// executions in flight, not the records passed in.
func (s *EvaluationService) installLocked(key recordKey, records []models.BranchPromptRecord) {
	for i := range records {
		records[i].Running = s.running[runningKey{key, records[i].Branch}]
	}
	s.lists[key] = records
}

func (s *EvaluationService) saveLocked(session Session) error {
	return s.store.Save(session.Username, session.Repository, copyRecords(s.lists[session.key()]))
}

func indexOf(records []models.BranchPromptRecord, branch string) int {
	for i, r := range records {
		if r.Branch == branch {
			return i
		}
	}
	return -1
}

// upsertRecord replaces the record of the same branch, previous result
// included, or appends it.
func upsertRecord(records []models.BranchPromptRecord, record models.BranchPromptRecord) []models.BranchPromptRecord {
	if i := indexOf(records, record.Branch); i >= 0 {
		record.Running = records[i].Running
		records[i] = record
		return records
	}
	return append(records, record)
}

func (s *EvaluationService) setRunningLocked(key recordKey, branch string, running bool) {
	if running {
		s.running[runningKey{key, branch}] = true
	} else {
		delete(s.running, runningKey{key, branch})
	}
	if i := indexOf(s.lists[key], branch); i >= 0 {
		s.lists[key][i].Running = running
	}
}

// orderRecords puts the records of names first, in that order, followed by
// records of branches no longer listed in their previous order. Only the
// first record of a branch is kept.
func orderRecords(records []models.BranchPromptRecord, names []string) []models.BranchPromptRecord {
	position := make(map[string]int, len(names))
	for i, n := range names {
		position[n] = i
	}

	ordered := make([]models.BranchPromptRecord, len(names))
	present := make([]bool, len(names))
	var rest []models.BranchPromptRecord
	seen := make(map[string]bool, len(records))

	for _, r := range records {
		if seen[r.Branch] {
			continue
		}
		seen[r.Branch] = true
		if i, ok := position[r.Branch]; ok {
			ordered[i] = r
			present[i] = true
			continue
		}
		rest = append(rest, r)
	}

	out := make([]models.BranchPromptRecord, 0, len(records))
	for i, r := range ordered {
		if present[i] {
			out = append(out, r)
		}
	}
	return append(out, rest...)
}

func copyRecords(records []models.BranchPromptRecord) []models.BranchPromptRecord {
	out := make([]models.BranchPromptRecord, len(records))
	copy(out, records)
	return out
}
