package services

import (
	"math"
	"strings"

	"HavenGo/models"
)

// MoodAnalysisResult is the classifier output: a 1-10 intensity score, the
// selected category, and the normalized emotion-weight breakdown.
type MoodAnalysisResult struct {
	Score    int
	Mood     models.MoodCategory
	Emotions map[models.MoodCategory]float64
}

// categoryScores are the fixed per-category score constants the weighted
// score is computed from.
var categoryScores = map[models.MoodCategory]float64{
	models.MoodExcellent:  10,
	models.MoodHappy:      8,
	models.MoodGrateful:   8.5,
	models.MoodHopeful:    7.5,
	models.MoodCalm:       7,
	models.MoodNeutral:    5,
	models.MoodStressed:   3.5,
	models.MoodAngry:      3,
	models.MoodAnxious:    3,
	models.MoodSad:        2.5,
	models.MoodDistressed: 1.5,
}

var positiveKeywords = map[models.MoodCategory][]string{
	models.MoodExcellent: {
		"amazing", "fantastic", "wonderful", "awesome", "incredible",
		"excellent", "thrilled", "ecstatic", "overjoyed", "best day",
	},
	models.MoodHappy: {
		"happy", "joy", "glad", "great", "cheerful", "delighted",
		"smiling", "laughing", "had fun", "enjoyed",
	},
	models.MoodGrateful: {
		"grateful", "thankful", "blessed", "appreciate", "thank you",
	},
	models.MoodHopeful: {
		"hopeful", "optimistic", "looking forward", "excited",
		"motivated", "inspired", "encouraged",
	},
	models.MoodCalm: {
		"calm", "peaceful", "relaxed", "serene", "at ease",
		"tranquil", "rested", "content",
	},
}

var negativeKeywords = map[models.MoodCategory][]string{
	models.MoodStressed: {
		"stressed", "stress", "overwhelmed", "under pressure",
		"burned out", "burnout", "exhausted", "too much to do",
	},
	models.MoodAnxious: {
		"anxious", "anxiety", "worried", "worrying", "nervous",
		"panic", "scared", "afraid", "uneasy", "on edge",
	},
	models.MoodAngry: {
		"angry", "anger", "furious", "annoyed", "irritated",
		"frustrated", "rage", "fed up", "resent",
	},
	models.MoodSad: {
		"sad", "unhappy", "depressed", "crying", "cried", "lonely",
		"miserable", "heartbroken", "feel empty", "grieving",
	},
	models.MoodDistressed: {
		"hopeless", "desperate", "despair", "unbearable", "worthless",
		"breaking down", "falling apart", "give up", "can't cope",
	},
}

var neutralKeywords = []string{
	"okay", "alright", "nothing much", "as usual", "same as always", "so-so",
}

// negationPrefixes are checked immediately preceding a positive keyword.
var negationPrefixes = []string{
	"not ", "don't ", "can't ", "isn't ", "aren't ",
	"won't ", "doesn't ", "never ",
}

// neutralResult is what any input without a keyword match collapses to.
func neutralResult() MoodAnalysisResult {
	return MoodAnalysisResult{
		Score:    5,
		Mood:     models.MoodNeutral,
		Emotions: map[models.MoodCategory]float64{models.MoodNeutral: 1.0},
	}
}

// AnalyzeMood maps free text to a mood category, a 1-10 score, and an
// emotion-weight breakdown. Pure function: no I/O, no randomness, identical
// input always yields identical output, and it is total over all strings.
//
// Negated positive keywords decrement their category and add 0.5 to sad
// without touching the running total, so breakdown weights need not sum to 1
// when negations are present. That asymmetry is deliberate and pinned by
// tests; clients must not renormalize.
func AnalyzeMood(text string) MoodAnalysisResult {
	lower := strings.ToLower(text)

	accumulators := make(map[models.MoodCategory]float64)
	total := 0.0

	match := func(category models.MoodCategory, keywords []string) {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				accumulators[category] += 1.0
				total += 1.0
			}
		}
	}
	for category, keywords := range positiveKeywords {
		match(category, keywords)
	}
	for category, keywords := range negativeKeywords {
		match(category, keywords)
	}
	match(models.MoodNeutral, neutralKeywords)

	// Second pass: negations of positive keywords.
	for category, keywords := range positiveKeywords {
		for _, keyword := range keywords {
			for _, prefix := range negationPrefixes {
				if strings.Contains(lower, prefix+keyword) {
					accumulators[category] -= 1.0
					accumulators[models.MoodSad] += 0.5
				}
			}
		}
	}

	for category, weight := range accumulators {
		if weight <= 0 {
			delete(accumulators, category)
		}
	}

	if total == 0 {
		return neutralResult()
	}

	emotions := make(map[models.MoodCategory]float64, len(accumulators))
	weighted := 0.0
	for category, weight := range accumulators {
		normalized := weight / total
		emotions[category] = normalized
		weighted += normalized * categoryScores[category]
	}

	score := models.ClampScore(int(math.Round(weighted)))

	mood := moodForScore(score)
	if dominant, weight := dominantEmotion(emotions); weight > 0.5 {
		mood = dominant
	}

	return MoodAnalysisResult{Score: score, Mood: mood, Emotions: emotions}
}

func moodForScore(score int) models.MoodCategory {
	switch {
	case score >= 9:
		return models.MoodExcellent
	case score >= 7:
		return models.MoodHappy
	case score >= 5:
		return models.MoodNeutral
	case score >= 3:
		return models.MoodSad
	default:
		return models.MoodDistressed
	}
}

func dominantEmotion(emotions map[models.MoodCategory]float64) (models.MoodCategory, float64) {
	var best models.MoodCategory
	bestWeight := -1.0
	for category, weight := range emotions {
		if weight > bestWeight {
			best, bestWeight = category, weight
		}
	}
	return best, bestWeight
}
