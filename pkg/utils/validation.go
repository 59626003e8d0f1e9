package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

const (
	TopicTitleMinLen = 5
	TopicTitleMaxLen = 200
	TopicBodyMinLen  = 20
	TopicBodyMaxLen  = 50000
	ReplyMinLen      = 1
	ReplyMaxLen      = 50000
	MaxTopicTags     = 5
	MaxTagLen        = 40

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email address format
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateTopicTitle enforces the [5,200] rune bounds.
func ValidateTopicTitle(title string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(title))
	if length < TopicTitleMinLen {
		return fmt.Errorf("title must be at least %d characters long", TopicTitleMinLen)
	}
	if length > TopicTitleMaxLen {
		return fmt.Errorf("title must not exceed %d characters", TopicTitleMaxLen)
	}
	return nil
}

// ValidateTopicBody enforces the [20,50000] rune bounds.
func ValidateTopicBody(body string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(body))
	if length < TopicBodyMinLen {
		return fmt.Errorf("body must be at least %d characters long", TopicBodyMinLen)
	}
	if length > TopicBodyMaxLen {
		return fmt.Errorf("body must not exceed %d characters", TopicBodyMaxLen)
	}
	return nil
}

// ValidateReplyContent enforces reply content bounds.
func ValidateReplyContent(content string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(content))
	if length < ReplyMinLen {
		return fmt.Errorf("reply content cannot be empty")
	}
	if length > ReplyMaxLen {
		return fmt.Errorf("reply content must not exceed %d characters", ReplyMaxLen)
	}
	return nil
}

// ValidateTags normalizes and validates the tag list: at most 5 tags,
// lowercased, deduplicated, each non-empty and at most 40 characters.
func ValidateTags(tags []string) ([]string, error) {
	if len(tags) > MaxTopicTags {
		return nil, fmt.Errorf("at most %d tags are allowed", MaxTopicTags)
	}

	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			return nil, fmt.Errorf("tags cannot be empty")
		}
		if utf8.RuneCountInString(t) > MaxTagLen {
			return nil, fmt.Errorf("tag %q exceeds %d characters", t, MaxTagLen)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}

	return normalized, nil
}

// Slugify produces a URL-safe slug for organizations and categories.
func Slugify(name string) string {
	return slug.Make(name)
}

// ParsePagination reads page/limit query parameters with clamped bounds.
func ParsePagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = DefaultPageLimit

	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return page, limit
}

// ParseUintParam parses a numeric path parameter.
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// ParseUintQuery parses a numeric query parameter.
func ParseUintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}
