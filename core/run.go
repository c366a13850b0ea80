package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// cacheVersion invalidates cached repository results when the result layout
// or pipeline semantics change.
const cacheVersion = 1

// Engine runs the analysis pipeline. The git client and cache manager are
// injected so the pipeline is testable without a git binary or database.
type Engine struct {
	client contract.GitClient
	mgr    contract.CacheManager
}

// NewEngine creates an analysis engine.
func NewEngine(client contract.GitClient, mgr contract.CacheManager) *Engine {
	return &Engine{client: client, mgr: mgr}
}

// repoTask tracks one repository through the worker pool.
type repoTask struct {
	index  int
	repo   RepoRef
	state  schema.TaskState
	result schema.RepoResult
}

// ExecuteAnalysis runs the full pipeline for one immutable settings snapshot.
// Only configuration-level problems return a Go error; repository and file
// failures are folded into the result with partial results preserved.
func (e *Engine) ExecuteAnalysis(ctx context.Context, st schema.Settings) (schema.AnalysisResult, error) {
	if err := st.Validate(); err != nil {
		return schema.AnalysisResult{}, err
	}
	filter, err := compileFilters(&st)
	if err != nil {
		return schema.AnalysisResult{}, err
	}
	if st.DryRun >= 2 {
		// Settings validation only.
		return schema.AnalysisResult{Repos: []schema.RepoResult{}, Success: true}, nil
	}

	runID, history := e.beginHistory(&st)

	// Task indices carry the locate order so a failed input keeps its
	// configured position among the located repos.
	repos, failures := LocateRepositories(&st)
	tasks := make([]*repoTask, 0, len(repos)+len(failures))
	for _, f := range failures {
		tasks = append(tasks, &repoTask{
			index: f.Order,
			state: schema.FailedState,
			result: schema.RepoResult{
				Name:    f.Input,
				Path:    f.Input,
				Success: false,
				Error:   f.Err.Error(),
			},
		})
	}
	for _, r := range repos {
		tasks = append(tasks, &repoTask{index: r.Order, repo: r, state: schema.PendingState})
	}

	e.runTasks(ctx, &st, filter, tasks)

	result := assembleResult(tasks)
	e.endHistory(runID, history, &result)
	return result, nil
}

// runTasks dispatches pending repository tasks onto a bounded worker pool.
// Worker count follows the multithread flag; a panicking worker fails only
// its own repository.
func (e *Engine) runTasks(ctx context.Context, st *schema.Settings, filter *commitFilter, tasks []*repoTask) {
	workers := 1
	if st.Multithread {
		workers = schema.DefaultWorkers
	}

	taskCh := make(chan *repoTask, len(tasks))
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for task := range taskCh {
				e.runOneTask(ctx, st, filter, task)
			}
		})
	}

	for _, task := range tasks {
		if task.state == schema.PendingState {
			taskCh <- task
		}
	}
	close(taskCh)
	wg.Wait()
}

// runOneTask moves one task pending -> running -> completed|failed.
func (e *Engine) runOneTask(ctx context.Context, st *schema.Settings, filter *commitFilter, task *repoTask) {
	defer func() {
		if r := recover(); r != nil {
			task.state = schema.FailedState
			task.result = schema.RepoResult{
				Name:    task.repo.Name,
				Path:    task.repo.Path,
				Success: false,
				Error:   fmt.Sprintf("%v: %v", contract.ErrConcurrencyFailure, r),
			}
		}
	}()

	task.state = schema.RunningState
	result, err := e.analyzeRepoCached(ctx, st, filter, task.repo)
	if err != nil {
		task.state = schema.FailedState
		task.result = schema.RepoResult{
			Name:    task.repo.Name,
			Path:    task.repo.Path,
			Success: false,
			Error:   err.Error(),
		}
		return
	}
	task.state = schema.CompletedState
	task.result = result
}

// cacheKey digests the repository path, HEAD hash and settings digest into a
// fixed-length key, keeping long repository paths inside every backend's key
// column limit.
func cacheKey(path, head, settingsHash string) string {
	sum := sha256.Sum256([]byte(path + "|" + head + "|" + settingsHash))
	return hex.EncodeToString(sum[:])
}

// analyzeRepoCached consults the result cache before running the pipeline.
// Cache keys combine the repository HEAD and the settings digest, so either
// new commits or changed settings invalidate the entry.
func (e *Engine) analyzeRepoCached(ctx context.Context, st *schema.Settings, filter *commitFilter, repo RepoRef) (schema.RepoResult, error) {
	store := e.resultStore()
	var key string
	if store != nil {
		head, err := e.client.HeadHash(ctx, repo.Path)
		if err == nil {
			key = cacheKey(repo.Path, head, st.Hash())
			if data, version, _, err := store.Get(key); err == nil && version == cacheVersion {
				var cached schema.RepoResult
				if json.Unmarshal(data, &cached) == nil {
					return cached, nil
				}
			}
		}
	}

	result, err := e.analyzeRepo(ctx, st, filter, repo)
	if err != nil {
		return schema.RepoResult{}, err
	}

	if store != nil && key != "" {
		if data, err := json.Marshal(&result); err == nil {
			if err := store.Set(key, data, cacheVersion, time.Now().Unix()); err != nil {
				contract.LogWarn("result cache write failed", err)
			}
		}
	}
	return result, nil
}

// analyzeRepo runs the per-repository pipeline: walk history, select files,
// blame, classify, resolve copies/moves, aggregate.
func (e *Engine) analyzeRepo(ctx context.Context, st *schema.Settings, filter *commitFilter, repo RepoRef) (schema.RepoResult, error) {
	records, err := walkHistory(ctx, e.client, repo.Path, filter)
	if err != nil {
		return schema.RepoResult{}, err
	}

	files, err := e.client.ListFiles(ctx, repo.Path)
	if err != nil {
		return schema.RepoResult{}, err
	}
	selected := selectFiles(files, st, worktreeLineCounter(repo.Path))

	var entries []schema.BlameEntry
	if st.DryRun == 0 && !st.BlameSkip {
		entries = e.blameFiles(ctx, st, repo, selected)
		resolveCopyMoves(entries, st)
		entries = dropFilteredEntries(entries, filter)
	}

	authors, fileStats := aggregate(records, entries, selected, st)
	if st.DryRun >= 1 {
		// Locate-and-list only: report the selected files without line data.
		fileStats = make([]schema.FileStat, 0, len(selected))
		for _, f := range selected {
			fileStats = append(fileStats, schema.FileStat{Path: f})
		}
	}

	return schema.RepoResult{
		Name:         repo.Name,
		Path:         repo.Path,
		AuthorStats:  authors,
		FileStats:    fileStats,
		BlameEntries: filterDetail(entries, st.BlameExclusions),
		Success:      true,
	}, nil
}

// dropFilteredEntries removes blame lines whose origin commit matches an
// exclusion rule, so excluded authors and out-of-window commits contribute
// nothing to surviving-line counts. Runs after copy/move resolution because
// reattribution can change a line's origin.
func dropFilteredEntries(entries []schema.BlameEntry, filter *commitFilter) []schema.BlameEntry {
	kept := entries[:0]
	for i := range entries {
		c := schema.Commit{
			Hash:      entries[i].CommitHash,
			Author:    entries[i].Author,
			Email:     entries[i].Email,
			Timestamp: entries[i].CommitTime,
		}
		if filter.excludes(&c) {
			continue
		}
		kept = append(kept, entries[i])
	}
	return kept
}

// blameFiles extracts and classifies blame for the selected files. Blame
// across distinct files is embarrassingly parallel: with multicore enabled
// the work spreads over additional workers.
func (e *Engine) blameFiles(ctx context.Context, st *schema.Settings, repo RepoRef, selected []string) []schema.BlameEntry {
	workers := 1
	if st.Multicore {
		workers = schema.DefaultWorkers
	}

	type fileBlame struct {
		index   int
		entries []schema.BlameEntry
	}
	fileCh := make(chan int, len(selected))
	resultCh := make(chan fileBlame, len(selected))

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for idx := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				path := selected[idx]
				entries, err := extractBlame(ctx, e.client, repo.Path, path, st)
				if err != nil {
					if st.Verbosity >= 1 || errors.Is(err, contract.ErrBlameParse) {
						contract.LogWarn(fmt.Sprintf("skipping %s in %s", path, repo.Name), err)
					}
					continue
				}
				classifyLines(path, entries)
				markExclusions(entries, st)
				resultCh <- fileBlame{index: idx, entries: entries}
			}
		})
	}

	for idx := range selected {
		fileCh <- idx
	}
	close(fileCh)
	wg.Wait()
	close(resultCh)

	collected := make([]fileBlame, 0, len(selected))
	for fb := range resultCh {
		collected = append(collected, fb)
	}
	// Restore selection order regardless of worker completion order.
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	var entries []schema.BlameEntry
	for _, fb := range collected {
		entries = append(entries, fb.entries...)
	}
	return entries
}

// assembleResult merges all tasks into the final result, preserving the
// configured input order regardless of completion order.
func assembleResult(tasks []*repoTask) schema.AnalysisResult {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].index < tasks[j].index })

	result := schema.AnalysisResult{Repos: make([]schema.RepoResult, 0, len(tasks)), Success: true}
	var failed []string
	for _, task := range tasks {
		result.Repos = append(result.Repos, task.result)
		if !task.result.Success {
			result.Success = false
			failed = append(failed, task.result.Name)
		}
	}
	if len(failed) > 0 {
		result.Error = fmt.Sprintf("analysis failed for: %s", strings.Join(failed, ", "))
	}
	return result
}

func (e *Engine) resultStore() contract.CacheStore {
	if e.mgr == nil {
		return nil
	}
	return e.mgr.GetResultStore()
}

func (e *Engine) beginHistory(st *schema.Settings) (int64, contract.HistoryStore) {
	if e.mgr == nil {
		return 0, nil
	}
	history := e.mgr.GetHistoryStore()
	if history == nil {
		return 0, nil
	}
	runID, err := history.BeginRun(time.Now(), st)
	if err != nil {
		contract.LogWarn("run history tracking initialization failed", err)
		return 0, nil
	}
	return runID, history
}

func (e *Engine) endHistory(runID int64, history contract.HistoryStore, result *schema.AnalysisResult) {
	if history == nil || runID <= 0 {
		return
	}
	for i := range result.Repos {
		if err := history.RecordRepoStats(runID, &result.Repos[i]); err != nil {
			contract.LogWarn("run history repo record failed", err)
		}
	}
	if err := history.EndRun(runID, time.Now(), len(result.Repos), result.Success); err != nil {
		contract.LogWarn("run history finalization failed", err)
	}
}
