package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for an active quiz's full definition
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// StudentAttemptKey returns the cache key for a student's attempt on a quiz
func (r *CacheKeyStruct) StudentAttemptKey(quizID string, studentID int) string {
	return fmt.Sprintf("student:%d:quiz:%s:attempt", studentID, quizID)
}

var CacheKey = NewCacheKeyStruct()
