package progressservice

import (
	"fmt"
	"io"
	"time"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/xuri/excelize/v2"
)

// CompletedGamesSheet is the worksheet name of the completed-games export.
const CompletedGamesSheet = "Completed Games"

var completedGamesHeader = []any{
	"Game ID", "Title", "Console", "Achievements", "Unlocked", "Unlocked (Hardcore)",
	"Completion", "Completion (Hardcore)", "First Unlock", "Last Unlock",
}

func writeCompletedGamesWorkbook(w io.Writer, games []progressdomain.CompletedGame) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CompletedGamesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("failed to create percent style: %w", err)
	}

	if err := f.SetSheetRow(CompletedGamesSheet, "A1", &completedGamesHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for idx, g := range games {
		axis, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		row := []any{
			int64(g.GameID), g.Title, g.ConsoleName, g.MaxPossible, g.NumAwarded, g.NumAwardedHC,
			g.PctWon, g.PctWonHC, exportDate(g.FirstWonDate), exportDate(g.MostRecentWonDate),
		}
		if err := f.SetSheetRow(CompletedGamesSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", idx+2, err)
		}
	}

	if len(games) > 0 {
		last := len(games) + 1
		if err := f.SetCellStyle(CompletedGamesSheet, "G2", fmt.Sprintf("H%d", last), percent); err != nil {
			return fmt.Errorf("failed to style percentages: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func exportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(progressdomain.CompactDateLayout)
}
