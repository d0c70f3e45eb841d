package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizNotActive      = errors.New("quiz is not currently active")
	ErrNotQuizOwner       = errors.New("not the owner of this quiz")
	ErrInvalidTransition  = errors.New("invalid quiz status transition")
	ErrQuestionlessQuiz   = errors.New("quiz must contain at least one question")
	ErrAnswerNotInOptions = errors.New("correct answer must be one of the listed options")

	ErrSessionNotFound    = errors.New("quiz session not found")
	ErrSubmissionNotFound = errors.New("quiz submission not found")
	ErrNotSubmissionOwner = errors.New("you can only view your own quiz results")
)
