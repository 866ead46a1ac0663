package fixtures

import (
	"context"
	"fmt"
	"os"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"

	"gopkg.in/yaml.v3"
)

// File is the YAML shape of a registry fixture used for local runs.
type File struct {
	Elections []Election `yaml:"elections"`
}

type Election struct {
	ID          string    `yaml:"id"`
	OwnerID     string    `yaml:"owner"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Status      string    `yaml:"status"`
	Date        time.Time `yaml:"date"`
	Sessions    []Session `yaml:"sessions"`
	Voters      []Voter   `yaml:"voters"`
}

type Session struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Items       []Item `yaml:"items"`
}

type Item struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Kind          string   `yaml:"kind"`
	MaxSelections int      `yaml:"maxSelections"`
	Options       []Option `yaml:"options"`
}

type Option struct {
	ID          string `yaml:"id"`
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

type Voter struct {
	ID       string  `yaml:"id"`
	Identity string  `yaml:"identity"`
	Weight   float64 `yaml:"weight"`
}

// Seeder is implemented by registries that accept fixture data.
type Seeder interface {
	SaveElection(ctx context.Context, election entities.Election) error
	SaveSession(ctx context.Context, session entities.ElectionSession) error
	SaveVoter(ctx context.Context, voter entities.Voter) error
}

func Load(path string) (File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(buf)
}

func Parse(buf []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(buf, &file); err != nil {
		return File{}, fmt.Errorf("parse fixture: %w", err)
	}
	for _, election := range file.Elections {
		if election.ID == "" {
			return File{}, fmt.Errorf("fixture election without id")
		}
		for _, session := range election.Sessions {
			for _, item := range session.Items {
				switch entities.ItemKind(item.Kind) {
				case entities.ItemKindPosition:
				case entities.ItemKindMulti:
					if item.MaxSelections < 1 {
						return File{}, fmt.Errorf("item %s: multi items need maxSelections >= 1", item.ID)
					}
				default:
					return File{}, fmt.Errorf("item %s: unknown kind %q", item.ID, item.Kind)
				}
			}
		}
	}
	return file, nil
}

// Apply writes every election, session and voter in file to seeder.
func (f File) Apply(ctx context.Context, seeder Seeder) error {
	for _, election := range f.Elections {
		if err := seeder.SaveElection(ctx, entities.Election{
			ElectionID:  election.ID,
			OwnerID:     election.OwnerID,
			Name:        election.Name,
			Description: election.Description,
			Status:      entities.Status(election.Status),
			Date:        election.Date,
		}); err != nil {
			return err
		}
		for _, session := range election.Sessions {
			if err := seeder.SaveSession(ctx, session.toEntity(election.ID)); err != nil {
				return err
			}
		}
		for _, voter := range election.Voters {
			weight := voter.Weight
			if weight == 0 {
				weight = 1
			}
			if err := seeder.SaveVoter(ctx, entities.Voter{
				VoterID:    voter.ID,
				ElectionID: election.ID,
				Identity:   voter.Identity,
				Weight:     weight,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Session) toEntity(electionID string) entities.ElectionSession {
	items := make([]entities.VotingItem, 0, len(s.Items))
	for _, item := range s.Items {
		options := make([]entities.VotingOption, 0, len(item.Options))
		for _, option := range item.Options {
			options = append(options, entities.VotingOption{
				OptionID:    option.ID,
				Value:       option.Value,
				Description: option.Description,
			})
		}
		maxSelections := item.MaxSelections
		if entities.ItemKind(item.Kind) == entities.ItemKindPosition {
			maxSelections = 1
		}
		items = append(items, entities.VotingItem{
			ItemID:        item.ID,
			Title:         item.Title,
			Kind:          entities.ItemKind(item.Kind),
			MaxSelections: maxSelections,
			Options:       options,
		})
	}
	return entities.ElectionSession{
		SessionID:   s.ID,
		ElectionID:  electionID,
		Name:        s.Name,
		Description: s.Description,
		Status:      entities.Status(s.Status),
		Items:       items,
	}
}
