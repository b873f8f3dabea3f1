// Package docs holds the folio user documentation.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/etnz/folio"
)

//go:embed *.md
var docs embed.FS

// Verbs is the name of the generated command reference topic.
const Verbs = "verbs"

// GetTopic returns the content of a documentation topic, "*" for all of them.
func GetTopic(topic string) (string, error) {
	switch topic {
	case "*":
		topics, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(topics...)
	case Verbs:
		return verbsTopic(), nil
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of the topics concatenated together.
func GetTopics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns the sorted names of the topics, readme excluded.
func GetAllTopics() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	topics := []string{Verbs}
	for _, file := range files {
		if base := strings.TrimSuffix(file, ".md"); base != "readme" {
			topics = append(topics, base)
		}
	}
	sort.Strings(topics)
	return topics, nil
}

// verbsTopic lists the usage of every verb, grouped by element.
func verbsTopic() string {
	var b strings.Builder
	b.WriteString("# Verbs\n\nOptional parameters are in brackets.\n")
	var el folio.Element = -1
	for _, v := range folio.Verbs() {
		if v.Element() != el {
			el = v.Element()
			fmt.Fprintf(&b, "\n## %s\n\n", el)
		}
		fmt.Fprintf(&b, "    %s\n", v.Usage())
	}
	return b.String()
}
