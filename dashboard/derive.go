/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package dashboard

import (
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/humaidq/intake/api"
)

// Stats are the aggregates shown above the dashboard charts.
type Stats struct {
	Count        int
	Positive     int
	MeanGlucose  float64
	MeanBMI      float64
	MeanAge      float64
	PositiveRate float64 // percent, 0-100
}

// Derive computes Stats over records. An empty slice yields zero values.
func Derive(records []api.HealthRecord) Stats {
	s := Stats{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	glucose := make([]float64, 0, len(records))
	bmi := make([]float64, 0, len(records))
	age := make([]float64, 0, len(records))

	for _, r := range records {
		glucose = append(glucose, r.Glucose)
		bmi = append(bmi, r.BMI)
		age = append(age, r.Age)

		if r.Outcome {
			s.Positive++
		}
	}

	s.MeanGlucose = mean(glucose)
	s.MeanBMI = mean(bmi)
	s.MeanAge = mean(age)
	s.PositiveRate = float64(s.Positive) / float64(len(records)) * 100

	return s
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}

	return m
}

// Bucket is one bar of a histogram.
type Bucket struct {
	Label string
	Count int
}

// BMI categories.
const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

var bmiOrder = []string{BMIUnderweight, BMINormal, BMIOverweight, BMIObese}

// BMICategories lists the categories from lowest to highest.
func BMICategories() []string {
	return append([]string(nil), bmiOrder...)
}

// BMICategory places bmi in its category. Boundaries are lower-inclusive:
// 18.5 is Normal, 25 is Overweight, 30 is Obese.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

var ageOrder = []string{"0-20", "21-40", "41-60", "61-80", "81+"}

// AgeGroups lists the group labels, youngest first.
func AgeGroups() []string {
	return append([]string(nil), ageOrder...)
}

// AgeGroup places age in its group. Upper bounds are inclusive: 20 is
// "0-20" and 21 is "21-40".
func AgeGroup(age float64) string {
	switch {
	case age <= 20:
		return "0-20"
	case age <= 40:
		return "21-40"
	case age <= 60:
		return "41-60"
	case age <= 80:
		return "61-80"
	default:
		return "81+"
	}
}

// BMIBuckets counts records per BMI category, in category order.
func BMIBuckets(records []api.HealthRecord) []Bucket {
	return bucketize(records, bmiOrder, func(r api.HealthRecord) string { return BMICategory(r.BMI) })
}

// AgeBuckets counts records per age group, youngest first.
func AgeBuckets(records []api.HealthRecord) []Bucket {
	return bucketize(records, ageOrder, func(r api.HealthRecord) string { return AgeGroup(r.Age) })
}

func bucketize(records []api.HealthRecord, order []string, label func(api.HealthRecord) string) []Bucket {
	index := make(map[string]int, len(order))
	buckets := make([]Bucket, len(order))

	for i, name := range order {
		index[name] = i
		buckets[i] = Bucket{Label: name}
	}

	for _, r := range records {
		buckets[index[label(r)]].Count++
	}

	return buckets
}

// Search keeps the records where any field, as displayed text, contains term
// ignoring case. An empty term keeps everything.
func Search(records []api.HealthRecord, term string) []api.HealthRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}

	out := make([]api.HealthRecord, 0, len(records))

	for _, r := range records {
		for _, field := range searchFields(r) {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, r)
				break
			}
		}
	}

	return out
}

func searchFields(r api.HealthRecord) []string {
	fields := []string{
		formatNumber(r.Glucose),
		formatNumber(r.BloodPressure),
		formatNumber(r.SkinThickness),
		formatNumber(r.Insulin),
		formatNumber(r.BMI),
		formatNumber(r.DiabetesPedigree),
		formatNumber(r.Age),
		strconv.FormatBool(r.Outcome),
		OutcomeLabel(r.Outcome),
		r.Source,
	}

	// Dataset rows carry no ids, so a zero id is absent rather than 0.
	if r.ID != 0 {
		fields = append(fields, strconv.FormatInt(r.ID, 10))
	}

	if r.UserID != 0 {
		fields = append(fields, strconv.FormatInt(r.UserID, 10))
	}

	if r.Pregnancies != nil {
		fields = append(fields, strconv.Itoa(*r.Pregnancies))
	}

	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		fields = append(fields, r.CreatedAt.Format("2006-01-02T15:04:05"))
	}

	return fields
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OutcomeLabel is the table text for a diabetes outcome.
func OutcomeLabel(positive bool) string {
	if positive {
		return "Yes"
	}

	return "No"
}
