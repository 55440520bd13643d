package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
	"github.com/parleylab/negotiation-avatar/internal/model/voice"
)

// defaultPlaceholders are spoken while a live negotiation reply is being
// generated, so the avatar never sits silent.
var defaultPlaceholders = []string{
	"Let me generate a meaningful response based on what you've said so far.",
	"You're doing great. I'm crafting the next part of our conversation.",
	"Thanks for being open. I'm working on generating something thoughtful based on what you've shared.",
	"I'm reflecting on everything so far to create the next step in our dialogue.",
	"I'm organizing my thoughts to ensure a clear and helpful response for you.",
}

// DialogueEnricher abstracts the audio pipeline for batch generation.
type DialogueEnricher interface {
	Enrich(ctx context.Context, text string, profile voice.Profile) (*dialogue.EnrichedAudio, error)
}

// PlaceholderEntry is one pre-generated placeholder with both voices.
type PlaceholderEntry struct {
	Dialogue string                  `json:"dialogue"`
	AudioF   *dialogue.EnrichedAudio `json:"audioF"`
	AudioM   *dialogue.EnrichedAudio `json:"audioM"`
}

// Generator runs the offline audio pre-generation jobs.
type Generator struct {
	dir      string
	enricher DialogueEnricher
	voices   voice.Store
}

// NewGenerator creates a generator over the script directory.
func NewGenerator(dir string, enricher DialogueEnricher, voices voice.Store) *Generator {
	return &Generator{dir: dir, enricher: enricher, voices: voices}
}

// GenerateScript enriches every scripted node with female and male audio
// and writes the complete script file. Nodes whose dialogue is rewritten
// at runtime are copied through without audio. A node that fails to
// enrich is kept text-only so one bad node does not sink the batch.
func (g *Generator) GenerateScript(ctx context.Context) (string, error) {
	inputPath := filepath.Join(g.dir, inputFileName)
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("read input script: %w", err)
	}

	var nodes []dialogue.ScriptNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return "", fmt.Errorf("parse input script: %w", err)
	}

	for i := range nodes {
		if !nodes[i].Scripted() {
			continue
		}

		nodes[i].AudioF = g.enrichForGender(ctx, nodes[i].Dialogue, "female", nodes[i].NodeID)
		nodes[i].AudioM = g.enrichForGender(ctx, nodes[i].Dialogue, "male", nodes[i].NodeID)
	}

	outputPath := filepath.Join(g.dir, completeFileName)
	if err := writeJSONFile(outputPath, nodes); err != nil {
		return "", err
	}

	log.Printf("[generate] complete script with audio metadata saved to %s", outputPath)
	return outputPath, nil
}

// GeneratePlaceholders enriches the placeholder texts for both voices and
// writes them to the placeholders file.
func (g *Generator) GeneratePlaceholders(ctx context.Context) (string, error) {
	entries := make([]PlaceholderEntry, 0, len(defaultPlaceholders))
	for _, text := range defaultPlaceholders {
		entries = append(entries, PlaceholderEntry{
			Dialogue: text,
			AudioF:   g.enrichForGender(ctx, text, "female", 0),
			AudioM:   g.enrichForGender(ctx, text, "male", 0),
		})
	}

	outputPath := filepath.Join(g.dir, placeholdersFileName)
	if err := writeJSONFile(outputPath, entries); err != nil {
		return "", err
	}

	log.Printf("[generate] placeholder audio saved to %s", outputPath)
	return outputPath, nil
}

func (g *Generator) enrichForGender(ctx context.Context, text, gender string, nodeID int) *dialogue.EnrichedAudio {
	profile, ok := g.voices.FindByGender(gender)
	if !ok {
		log.Printf("[generate] no %s voice profile configured", gender)
		return nil
	}

	enriched, err := g.enricher.Enrich(ctx, text, profile)
	if err != nil {
		log.Printf("[generate] enrichment failed for node %d (%s): %v", nodeID, gender, err)
		return nil
	}
	return enriched
}

func writeJSONFile(path string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal script output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write script output: %w", err)
	}
	return nil
}
