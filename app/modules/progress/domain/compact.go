package progressdomain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CompactDateLayout is the date format of the legacy compact encoding.
const CompactDateLayout = "2006-01-02 15:04:05"

const (
	compactRowSeparator   = ","
	compactFieldSeparator = "|"
	compactFieldCount     = 6
)

// ErrInvalidCompactRow is returned when a compact row cannot be decoded.
var ErrInvalidCompactRow = errors.New("invalid compact completed-games row")

// CompletedGameAward is the subset of a completed-games row carried by the legacy
// compact encoding. Dates are second precision UTC.
type CompletedGameAward struct {
	GameID            GameID     `json:"game_id"`
	MaxPossible       int        `json:"max_possible"`
	NumAwarded        int        `json:"num_awarded"`
	NumAwardedHC      int        `json:"num_awarded_hc"`
	MostRecentWonDate *time.Time `json:"most_recent_won_date,omitempty"`
	FirstWonDate      *time.Time `json:"first_won_date,omitempty"`
}

// AwardOf projects a completed-games row onto its compact form.
func AwardOf(g CompletedGame) CompletedGameAward {
	return CompletedGameAward{
		GameID:            g.GameID,
		MaxPossible:       g.MaxPossible,
		NumAwarded:        g.NumAwarded,
		NumAwardedHC:      g.NumAwardedHC,
		MostRecentWonDate: CompactTime(g.MostRecentWonDate),
		FirstWonDate:      CompactTime(g.FirstWonDate),
	}
}

// CompactTime returns t in UTC truncated to whole seconds, the precision the compact
// encoding can carry.
func CompactTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := t.UTC().Truncate(time.Second)
	return &c
}

// EncodeCompletedGames renders rows as
// gameId|maxPossible|numAwarded|numAwardedHC|mostRecentWonDate|firstWonDate
// joined by commas. Missing dates are written as empty fields.
func EncodeCompletedGames(rows []CompletedGameAward) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString(compactRowSeparator)
		}
		fields := [compactFieldCount]string{
			strconv.FormatInt(int64(r.GameID), 10),
			strconv.Itoa(r.MaxPossible),
			strconv.Itoa(r.NumAwarded),
			strconv.Itoa(r.NumAwardedHC),
			formatCompactDate(r.MostRecentWonDate),
			formatCompactDate(r.FirstWonDate),
		}
		b.WriteString(strings.Join(fields[:], compactFieldSeparator))
	}
	return b.String()
}

// DecodeCompletedGames parses the output of EncodeCompletedGames. An empty value
// decodes to no rows.
func DecodeCompletedGames(value string) ([]CompletedGameAward, error) {
	rows := []CompletedGameAward{}
	if value == "" {
		return rows, nil
	}

	for i, raw := range strings.Split(value, compactRowSeparator) {
		row, err := decodeCompactRow(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeCompactRow(raw string) (CompletedGameAward, error) {
	fields := strings.Split(raw, compactFieldSeparator)
	if len(fields) != compactFieldCount {
		return CompletedGameAward{}, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidCompactRow, compactFieldCount, len(fields))
	}

	var (
		row CompletedGameAward
		err error
	)

	gameID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return CompletedGameAward{}, fmt.Errorf("%w: game id: %v", ErrInvalidCompactRow, err)
	}
	row.GameID = GameID(gameID)

	counts := []*int{&row.MaxPossible, &row.NumAwarded, &row.NumAwardedHC}
	for i, dst := range counts {
		if *dst, err = strconv.Atoi(fields[i+1]); err != nil {
			return CompletedGameAward{}, fmt.Errorf("%w: field %d: %v", ErrInvalidCompactRow, i+1, err)
		}
	}

	if row.MostRecentWonDate, err = parseCompactDate(fields[4]); err != nil {
		return CompletedGameAward{}, err
	}
	if row.FirstWonDate, err = parseCompactDate(fields[5]); err != nil {
		return CompletedGameAward{}, err
	}
	return row, nil
}

func formatCompactDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(CompactDateLayout)
}

func parseCompactDate(field string) (*time.Time, error) {
	if field == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(CompactDateLayout, field, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", ErrInvalidCompactRow, field, err)
	}
	return &t, nil
}
