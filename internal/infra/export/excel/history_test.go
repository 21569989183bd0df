package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fitryne/internal/app/dto"
	"fitryne/internal/domain/nutrition"
)

func sampleHistory(locale nutrition.Locale) dto.EstimateHistory {
	in := nutrition.BiometricInput{Age: 25, Gender: nutrition.GenderMale, WeightKg: 70, HeightCm: 175, ActivityLevel: nutrition.ActivityModerate, Goal: nutrition.GoalMaintainWeight}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	formula, _ := nutrition.NewFormulaEstimate("e-1", "t-1", in, nutrition.Calculate(in), at)
	ai, _ := nutrition.NewAIEstimate("e-2", "t-1", in, "2500", at.Add(time.Hour))
	return dto.MapHistory("t-1", []*nutrition.Estimate{ai, formula}, locale)
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, sampleHistory(nutrition.LocaleEnglish)); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Calorie history")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][10] != "Target calories" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "AI" || rows[1][14] != "2500" {
		t.Errorf("ai row = %v", rows[1])
	}
	if rows[2][1] != "Formula" || rows[2][10] != "2594" || rows[2][12] != "346" {
		t.Errorf("formula row = %v", rows[2])
	}
	if rows[2][6] != "Moderately active" {
		t.Errorf("activity label = %q", rows[2][6])
	}
}

func TestBuildHistory_ArabicIsRightToLeft(t *testing.T) {
	f, err := BuildHistory(sampleHistory(""))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != "سجل السعرات" {
		t.Errorf("sheet = %q", sheet)
	}
	view, err := f.GetSheetView(sheet, 0)
	if err != nil {
		t.Fatal(err)
	}
	if view.RightToLeft == nil || !*view.RightToLeft {
		t.Error("arabic sheet is not right to left")
	}
	if v, _ := f.GetCellValue(sheet, "B2"); v != "الذكاء الاصطناعي" {
		t.Errorf("source label = %q", v)
	}
}
