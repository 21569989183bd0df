package ai

import (
	"fmt"
	"strconv"

	"fitryne/internal/domain/nutrition"
)

const arabicPrompt = `أنت خبير تغذية. برجاء حساب السعرات الحرارية اليومية المطلوبة لشخص بناءً على البيانات التالية:
- العمر: %d سنة
- الوزن: %s كجم
- الطول: %s سم
- الجنس: %s
- مستوى النشاط: %s
- الهدف: %s

قدم الناتج كرقم يمثل عدد السعرات الحرارية فقط، بدون أي نص إضافي. على سبيل المثال: 2500`

const englishPrompt = `You are a nutrition expert. Calculate the daily calorie requirement for a person with the following details:
- Age: %d years
- Weight: %s kg
- Height: %s cm
- Gender: %s
- Activity level: %s
- Goal: %s

Reply with the number of calories only, without any other text. For example: 2500`

// BuildPrompt renders the model prompt with every field translated to its
// display label in locale.
func BuildPrompt(in nutrition.BiometricInput, locale nutrition.Locale) string {
	locale = locale.OrDefault()
	tmpl := arabicPrompt
	if locale == nutrition.LocaleEnglish {
		tmpl = englishPrompt
	}
	return fmt.Sprintf(tmpl,
		in.Age,
		formatMeasure(in.WeightKg),
		formatMeasure(in.HeightCm),
		in.Gender.Label(locale),
		in.ActivityLevel.Label(locale),
		in.Goal.Label(locale),
	)
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
