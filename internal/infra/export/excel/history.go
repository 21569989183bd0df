package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fitryne/internal/app/dto"
	"fitryne/internal/domain/nutrition"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var sheetNames = map[nutrition.Locale]string{
	nutrition.LocaleArabic:  "سجل السعرات",
	nutrition.LocaleEnglish: "Calorie history",
}

var headers = map[nutrition.Locale][]string{
	nutrition.LocaleArabic: {
		"التاريخ", "المصدر", "العمر", "الجنس", "الوزن (كجم)", "الطول (سم)", "مستوى النشاط", "الهدف",
		"معدل الأيض الأساسي", "إجمالي الطاقة اليومية", "السعرات المستهدفة", "البروتين (جم)", "الكربوهيدرات (جم)", "الدهون (جم)", "تقدير الذكاء الاصطناعي",
	},
	nutrition.LocaleEnglish: {
		"Date", "Source", "Age", "Gender", "Weight (kg)", "Height (cm)", "Activity level", "Goal",
		"BMR", "TDEE", "Target calories", "Protein (g)", "Carbs (g)", "Fat (g)", "AI estimate",
	},
}

var sourceLabels = map[nutrition.Locale]map[string]string{
	nutrition.LocaleArabic:  {"formula": "المعادلة", "ai": "الذكاء الاصطناعي"},
	nutrition.LocaleEnglish: {"formula": "Formula", "ai": "AI"},
}

// WriteHistory renders a trainee's estimate history as a single-sheet
// workbook. Arabic workbooks are laid out right to left.
func WriteHistory(w io.Writer, history dto.EstimateHistory) error {
	f, err := BuildHistory(history)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("excel: write history: %w", err)
	}
	return nil
}

func BuildHistory(history dto.EstimateHistory) (*excelize.File, error) {
	locale := nutrition.Locale(history.Locale).OrDefault()
	sheet := sheetNames[locale]

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("excel: rename sheet: %w", err)
	}
	rtl := locale == nutrition.LocaleArabic
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, fmt.Errorf("excel: sheet view: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: header style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return nil, fmt.Errorf("excel: date style: %w", err)
	}

	cols := headers[locale]
	for i, title := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(cols))
	_ = f.SetCellStyle(sheet, "A1", last+"1", headerStyle)
	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", last, 16)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, item := range history.Items {
		row := i + 2
		values := []any{
			item.CreatedAt,
			sourceLabels[locale][item.Source],
			item.Input.Age,
			item.Input.GenderLabel,
			item.Input.WeightKg,
			item.Input.HeightCm,
			item.Input.ActivityLevelLabel,
			item.Input.GoalLabel,
		}
		if r := item.Result; r != nil {
			values = append(values, r.BMR, r.TDEE, r.TargetCalories, r.ProteinGrams, r.CarbGrams, r.FatGrams, nil)
		} else {
			values = append(values, nil, nil, nil, nil, nil, nil, item.Calories)
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return nil, fmt.Errorf("excel: row %d: %w", row, err)
		}
		_ = f.SetCellStyle(sheet, start, start, dateStyle)
	}
	return f, nil
}
