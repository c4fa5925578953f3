package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"yideng/ledger"

	"gopkg.in/yaml.v3"
)

// CourseSeed is the catalog file loaded at startup:
//
//	courses:
//	  - web2CourseId: COURSE-001
//	    name: Web3 Dev
//	    price: 100
type CourseSeed struct {
	Courses []SeedCourse `yaml:"courses"`
}

type SeedCourse struct {
	ID    string `yaml:"web2CourseId"`
	Name  string `yaml:"name"`
	Price uint64 `yaml:"price"`
}

func LoadCourseSeed(path string) (*CourseSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course seed: %w", err)
	}

	var seed CourseSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse course seed %s: %w", path, err)
	}
	return &seed, nil
}

// SeedCourses adds every course not yet in the catalog, with creator as the caller.
func SeedCourses(ctx context.Context, l *ledger.Ledger, creator ledger.Address, seed *CourseSeed) (int, error) {
	added := 0
	for _, c := range seed.Courses {
		_, err := l.Market.AddCourse(ctx, creator, c.ID, c.Name, c.Price)
		switch {
		case errors.Is(err, ledger.ErrCourseExists):
			continue
		case err != nil:
			return added, fmt.Errorf("seed course %q: %w", c.ID, err)
		}
		added++
	}

	log.Printf("[SEED] %d of %d courses added", added, len(seed.Courses))
	return added, nil
}
