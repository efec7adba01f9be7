package match

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jobpilot/internal/types"
)

// Composite weights. Keyword mode renormalizes over skill and experience so
// the composite stays in [0,1] with the same higher-is-better ordering.
const (
	semanticWeight   = 0.60
	skillWeight      = 0.25
	experienceWeight = 0.15

	keywordSkillWeight      = 0.65
	keywordExperienceWeight = 0.35
)

// Engine scores one profile against a batch of postings.
type Engine struct {
	embedder Embedder // nil means keyword mode from the start
	cache    Cache
	log      *zap.Logger
}

// New builds the engine. A nil embedder selects keyword mode; a nil cache
// gets an in-memory one.
func New(embedder Embedder, cache Cache, log *zap.Logger) *Engine {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{embedder: embedder, cache: cache, log: log.Named("match")}
}

// Score computes one MatchScore per posting, preserving input order. The
// whole batch runs in one mode: semantic when the embedder works, keyword
// otherwise. An embedder failure mid-batch restarts scoring in keyword mode
// so every score in the output is on the same scale.
func (e *Engine) Score(ctx context.Context, profile *types.Profile, postings []types.Posting) ([]types.MatchScore, error) {
	if !profile.Complete() {
		return nil, ErrProfileIncomplete
	}

	profileHash := profile.ContentHash
	if profileHash == "" {
		profileHash = profile.ComputeContentHash()
	}

	if e.embedder != nil {
		scores, err := e.scoreSemantic(ctx, profile, postings, profileHash)
		if err == nil {
			return scores, nil
		}
		// Degradation is transparent: the caller gets keyword-mode scores,
		// never the embedding error.
		e.log.Warn("embedding backend failed, falling back to keyword mode", zap.Error(err))
	}

	return e.scoreKeyword(profile, postings, profileHash), nil
}

// scoreSemantic runs the embedding path. Any embedding error aborts the
// whole batch so no mixed-mode output escapes.
func (e *Engine) scoreSemantic(ctx context.Context, profile *types.Profile, postings []types.Posting, profileHash string) ([]types.MatchScore, error) {
	profileVec := profile.Embedding
	if len(profileVec) == 0 {
		var err error
		profileVec, err = e.embedder.Embed(ctx, profileText(profile))
		if err != nil {
			return nil, err
		}
	}

	scores := make([]types.MatchScore, 0, len(postings))
	for _, p := range postings {
		key := types.ContentKey(p.ContentHash(), profileHash)
		if cached, ok := e.cache.Get(profile.ID, p.ID, key); ok && cached.Mode == types.ModeSemantic {
			scores = append(scores, cached)
			continue
		}

		postingVec, err := e.embedder.Embed(ctx, postingText(p))
		if err != nil {
			return nil, err
		}

		semantic := Cosine(profileVec, postingVec)
		score := e.baseScore(profile, p, profileHash)
		score.Semantic = &semantic
		score.Mode = types.ModeSemantic
		score.Composite = semanticWeight*semantic + skillWeight*score.Skill + experienceWeight*score.Experience

		e.cache.Put(score)
		scores = append(scores, score)
	}
	return scores, nil
}

// scoreKeyword runs the degraded path: no semantic component, renormalized
// weights.
func (e *Engine) scoreKeyword(profile *types.Profile, postings []types.Posting, profileHash string) []types.MatchScore {
	scores := make([]types.MatchScore, 0, len(postings))
	for _, p := range postings {
		key := types.ContentKey(p.ContentHash(), profileHash)
		if cached, ok := e.cache.Get(profile.ID, p.ID, key); ok && cached.Mode == types.ModeKeyword {
			scores = append(scores, cached)
			continue
		}

		score := e.baseScore(profile, p, profileHash)
		score.Mode = types.ModeKeyword
		score.Composite = keywordSkillWeight*score.Skill + keywordExperienceWeight*score.Experience

		e.cache.Put(score)
		scores = append(scores, score)
	}
	return scores
}

// baseScore computes the skill and experience components shared by both modes.
func (e *Engine) baseScore(profile *types.Profile, p types.Posting, profileHash string) types.MatchScore {
	tokens := Tokenize(postingText(p))
	return types.MatchScore{
		PostingID:  p.ID,
		ProfileID:  profile.ID,
		Skill:      SkillScore(profile.Skills, tokens),
		Experience: ExperienceScore(profile.TotalYears(), RequiredYears(postingText(p))),
		ContentKey: types.ContentKey(p.ContentHash(), profileHash),
	}
}

// Ranked pairs a posting with its score for presentation.
type Ranked struct {
	Posting types.Posting
	Score   types.MatchScore
}

// Rank sorts by composite descending. Ties keep the postings' input order,
// which is the deduplicator's stable insertion order, so equal scores always
// present in the same sequence.
func Rank(postings []types.Posting, scores []types.MatchScore) []Ranked {
	byPosting := make(map[string]types.MatchScore, len(scores))
	for _, s := range scores {
		byPosting[s.PostingID] = s
	}

	ranked := make([]Ranked, 0, len(postings))
	for _, p := range postings {
		ranked = append(ranked, Ranked{Posting: p, Score: byPosting[p.ID]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Composite > ranked[j].Score.Composite
	})
	return ranked
}

// profileText builds the embedding input for a profile.
func profileText(p *types.Profile) string {
	var b strings.Builder
	b.WriteString(strings.Join(p.Skills, ", "))
	for _, e := range p.Experience {
		b.WriteString("\n")
		b.WriteString(e.Title)
		if len(e.Skills) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(e.Skills, ", "))
		}
	}
	return b.String()
}

// postingText builds the scoring input for a posting.
func postingText(p types.Posting) string {
	parts := []string{p.Title, p.Description}
	parts = append(parts, p.Requirements...)
	return strings.Join(parts, "\n")
}
