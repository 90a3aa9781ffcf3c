package testutils

import (
	"context"
	"fmt"
	"time"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

const (
	officialCore = int(progressdomain.AchievementFlagOfficialCore)
	unofficial   = int(progressdomain.AchievementFlagUnofficial)
)

// TestDataGenerator provides methods to create test data for integration tests.
type TestDataGenerator struct {
	faker  *gofakeit.Faker
	seed   int64
	nextID int64
}

// NewTestDataGenerator creates a new test data generator with optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker:  gofakeit.New(uint64(s)),
		seed:   s,
		nextID: 1000,
	}
}

func (g *TestDataGenerator) id() int64 {
	g.nextID++
	return g.nextID
}

// GameFixture is a game with its console and achievements.
type GameFixture struct {
	System       progressdb.System
	Game         progressdb.Game
	Achievements []progressdb.Achievement
}

// Official returns the official-core achievements of the fixture.
func (f GameFixture) Official() []progressdb.Achievement {
	var out []progressdb.Achievement
	for _, a := range f.Achievements {
		if a.Flags == officialCore {
			out = append(out, a)
		}
	}
	return out
}

// GameSpec shapes a generated game.
type GameSpec struct {
	SystemID      int64
	Title         string
	Official      int
	Unofficial    int
	Progression   int
	WinConditions int
	// Points, when positive, is given to every achievement.
	Points int
}

// GenerateGame creates a game whose first Progression official achievements are
// progression, the next WinConditions are win conditions and the rest are untyped.
func (g *TestDataGenerator) GenerateGame(spec GameSpec) GameFixture {
	gameID := g.id()
	title := spec.Title
	if title == "" {
		title = g.faker.Sentence(g.faker.Number(1, 3))
	}
	systemID := spec.SystemID
	if systemID == 0 {
		systemID = 1
	}

	fx := GameFixture{
		System: progressdb.System{ID: systemID, Name: fmt.Sprintf("Console %d", systemID)},
		Game: progressdb.Game{
			ID:           gameID,
			Title:        title,
			SystemID:     systemID,
			ImageIcon:    fmt.Sprintf("/Images/%06d.png", gameID),
			Publisher:    g.faker.Company(),
			Developer:    g.faker.Company(),
			Genre:        g.faker.RandomString([]string{"Platformer", "RPG", "Puzzle", "Shooter"}),
			Released:     g.faker.DateRange(time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"),
			IsFinal:      g.faker.Bool(),
			ForumTopicID: g.id(),
		},
	}

	for i := 0; i < spec.Official+spec.Unofficial; i++ {
		a := progressdb.Achievement{
			ID:          g.id(),
			GameID:      gameID,
			Title:       g.faker.Sentence(g.faker.Number(2, 4)),
			Description: g.faker.Sentence(g.faker.Number(4, 8)),
			Points:      g.faker.RandomInt([]int{1, 2, 3, 5, 10, 25, 50}),
			Flags:       officialCore,
			BadgeName:   g.faker.Numerify("#####"),
		}
		if spec.Points > 0 {
			a.Points = spec.Points
		}
		switch {
		case i >= spec.Official:
			a.Flags = unofficial
		case i < spec.Progression:
			a.Type = typePtr(progressdomain.AchievementTypeProgression)
		case i < spec.Progression+spec.WinConditions:
			a.Type = typePtr(progressdomain.AchievementTypeWinCondition)
		}
		fx.Achievements = append(fx.Achievements, a)
		if a.Flags == officialCore {
			fx.Game.AchievementsPublished++
			fx.Game.PointsTotal += a.Points
		}
	}
	return fx
}

func typePtr(t progressdomain.AchievementType) *string {
	s := string(t)
	return &s
}

// GenerateUsers creates count users with unique alphanumeric usernames.
func (g *TestDataGenerator) GenerateUsers(count int) []progressdb.User {
	users := make([]progressdb.User, count)
	for i := range users {
		users[i] = progressdb.User{
			ID:       g.id(),
			Username: fmt.Sprintf("p%s%d", g.faker.Numerify("####"), i),
		}
	}
	return users
}

// Unlock builds a softcore unlock, or a hardcore one (both dates set) when hardcore is true.
func Unlock(userID, achievementID int64, at time.Time, hardcore bool) progressdb.PlayerAchievement {
	u := progressdb.PlayerAchievement{UserID: userID, AchievementID: achievementID, UnlockedAt: &at}
	if hardcore {
		u.UnlockedHardcoreAt = &at
	}
	return u
}

// UnlockAll unlocks every official achievement of fx for the user, one minute apart from start.
func UnlockAll(fx GameFixture, userID int64, start time.Time, hardcore bool) []progressdb.PlayerAchievement {
	official := fx.Official()
	out := make([]progressdb.PlayerAchievement, len(official))
	for i, a := range official {
		out[i] = Unlock(userID, a.ID, start.Add(time.Duration(i)*time.Minute), hardcore)
	}
	return out
}

// SeedGame inserts the console, game and achievements of fx.
func SeedGame(ctx context.Context, db bun.IDB, fx GameFixture) error {
	if _, err := db.NewInsert().Model(&fx.System).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert system: %w", err)
	}
	if _, err := db.NewInsert().Model(&fx.Game).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	if len(fx.Achievements) > 0 {
		if _, err := db.NewInsert().Model(&fx.Achievements).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert achievements: %w", err)
		}
	}
	return nil
}

// SeedUsers inserts users.
func SeedUsers(ctx context.Context, db bun.IDB, users ...progressdb.User) error {
	if len(users) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}
	return nil
}

// SeedUnlocks inserts the user's unlocks of fx and the matching player_games summary.
func SeedUnlocks(ctx context.Context, db bun.IDB, fx GameFixture, userID int64, unlocks []progressdb.PlayerAchievement) error {
	if len(unlocks) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&unlocks).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert unlocks: %w", err)
	}

	summary := Summarize(fx, userID, unlocks)
	if _, err := db.NewInsert().Model(&summary).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert player game: %w", err)
	}
	return nil
}

// Summarize derives the player_games row of the unlocks.
func Summarize(fx GameFixture, userID int64, unlocks []progressdb.PlayerAchievement) progressdb.PlayerGame {
	achievements := make([]progressdomain.Achievement, len(fx.Achievements))
	for i, a := range fx.Achievements {
		achievements[i] = progressdomain.Achievement{
			ID:     progressdomain.AchievementID(a.ID),
			GameID: progressdomain.GameID(a.GameID),
			Points: a.Points,
			Flags:  progressdomain.AchievementFlag(a.Flags),
		}
		if a.Type != nil {
			achievements[i].Type = progressdomain.AchievementType(*a.Type)
		}
	}
	events := make([]progressdomain.UnlockEvent, len(unlocks))
	for i, u := range unlocks {
		events[i] = progressdomain.UnlockEvent{
			UserID:             progressdomain.UserID(u.UserID),
			AchievementID:      progressdomain.AchievementID(u.AchievementID),
			UnlockedAt:         u.UnlockedAt,
			UnlockedHardcoreAt: u.UnlockedHardcoreAt,
		}
	}

	s := progressdomain.SummarizePlayerGame(progressdomain.UserID(userID), progressdomain.GameID(fx.Game.ID), achievements, events)
	row := progressdb.PlayerGame{
		UserID:                       userID,
		GameID:                       fx.Game.ID,
		AchievementsUnlocked:         s.AchievementsUnlocked,
		AchievementsUnlockedHardcore: s.AchievementsUnlockedHardcore,
		Points:                       s.Points,
		PointsHardcore:               s.PointsHardcore,
		FirstUnlockAt:                s.FirstUnlockAt,
		LastUnlockAt:                 s.LastUnlockAt,
		FirstUnlockHardcoreAt:        s.FirstUnlockHardcoreAt,
		LastUnlockHardcoreAt:         s.LastUnlockHardcoreAt,
	}
	if s.BeatenSoftcore {
		row.BeatenAt = s.LastUnlockAt
	}
	if s.BeatenHardcore {
		row.BeatenHardcoreAt = s.LastUnlockHardcoreAt
	}
	return row
}
