// Package sources holds the list of documentation pages that get ingested.
package sources

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var langGraphDocs = []string{
	"https://langchain-ai.github.io/langgraph/",
	"https://langchain-ai.github.io/langgraph/tutorials/customer-support/customer-support/",
	"https://langchain-ai.github.io/langgraph/tutorials/chatbots/information-gather-prompting/",
	"https://langchain-ai.github.io/langgraph/tutorials/code_assistant/langgraph_code_assistant/",
	"https://langchain-ai.github.io/langgraph/tutorials/multi_agent/multi-agent-collaboration/",
	"https://langchain-ai.github.io/langgraph/tutorials/multi_agent/agent_supervisor/",
	"https://langchain-ai.github.io/langgraph/tutorials/multi_agent/hierarchical_agent_teams/",
	"https://langchain-ai.github.io/langgraph/tutorials/plan-and-execute/plan-and-execute/",
	"https://langchain-ai.github.io/langgraph/tutorials/rewoo/rewoo/",
	"https://langchain-ai.github.io/langgraph/tutorials/llm-compiler/LLMCompiler/",
	"https://langchain-ai.github.io/langgraph/concepts/high_level/",
	"https://langchain-ai.github.io/langgraph/concepts/low_level/",
	"https://langchain-ai.github.io/langgraph/concepts/agentic_concepts/",
	"https://langchain-ai.github.io/langgraph/concepts/human_in_the_loop/",
	"https://langchain-ai.github.io/langgraph/concepts/multi_agent/",
	"https://langchain-ai.github.io/langgraph/concepts/persistence/",
	"https://langchain-ai.github.io/langgraph/concepts/streaming/",
	"https://langchain-ai.github.io/langgraph/concepts/faq/",
}

// File is the on-disk format accepted by LoadFile.
type File struct {
	URLs []string `yaml:"urls"`
}

// Default returns the built-in LangGraph documentation pages in ingestion order.
// The returned slice is a copy.
func Default() []string {
	out := make([]string, len(langGraphDocs))
	copy(out, langGraphDocs)
	return out
}

// LoadFile reads a YAML sources file of the form:
//
//	urls:
//	  - https://example.com/docs/
//	  - file:///srv/docs/intro.md
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}
	if len(f.URLs) == 0 {
		return nil, fmt.Errorf("sources file %s lists no urls", path)
	}

	urls := make([]string, 0, len(f.URLs))
	for i, raw := range f.URLs {
		raw = strings.TrimSpace(raw)
		if err := Validate(raw); err != nil {
			return nil, fmt.Errorf("sources file %s entry %d: %w", path, i, err)
		}
		urls = append(urls, raw)
	}
	return urls, nil
}

// Validate checks that raw is an absolute http, https or file URL.
func Validate(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("url %q has no host", raw)
		}
	case "file":
		if u.Path == "" {
			return fmt.Errorf("url %q has no path", raw)
		}
	default:
		return fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	return nil
}
