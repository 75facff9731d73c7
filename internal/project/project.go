package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaxiero/service/internal/storage"
)

// SlotCount is the number of named image slots, image1 through image8.
const SlotCount = 8

// SubCategorySummary is the subcategory embedded in project responses.
type SubCategorySummary struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Image *storage.Reference `json:"image"`
}

// Project is a portfolio entry. Slots[i] holds image<i+1>.
type Project struct {
	ID               string
	ProjectName      string
	CoverImage       *storage.Reference
	Slots            [SlotCount]*storage.Reference
	SubCategoryID    *string
	SubSubCategoryID *string
	SubCategory      *SubCategorySummary
	SubSubCategory   *SubCategorySummary
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// References returns every stored image of the project, cover first.
func (p *Project) References() []storage.Reference {
	var out []storage.Reference
	if p.CoverImage != nil {
		out = append(out, *p.CoverImage)
	}
	for _, ref := range p.Slots {
		if ref != nil {
			out = append(out, *ref)
		}
	}
	return out
}

// MarshalJSON flattens the slots into image1..image8 fields.
func (p *Project) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"id":               p.ID,
		"projectName":      p.ProjectName,
		"coverImage":       p.CoverImage,
		"subCategoryId":    p.SubCategoryID,
		"subsubCategoryId": p.SubSubCategoryID,
		"subCategory":      p.SubCategory,
		"subsubCategory":   p.SubSubCategory,
		"createdAt":        p.CreatedAt,
		"updatedAt":        p.UpdatedAt,
	}
	for i, ref := range p.Slots {
		out[SlotField(i+1)] = ref
	}
	return json.Marshal(out)
}

// SlotField is the form and JSON field name of a 1-based slot.
func SlotField(slot int) string {
	return fmt.Sprintf("image%d", slot)
}
