package artifact

import "fmt"

// IdeaList is the project-idea artifact: {"ideas":[{...}]}.
type IdeaList struct {
	Ideas []Idea `json:"ideas"`
}

type Idea struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
}

// DecodeIdeaList validates the idea artifact and assigns 1-based ids.
func DecodeIdeaList(raw []byte) (*IdeaList, error) {
	var list IdeaList
	if err := decodeStrict(raw, &list); err != nil {
		return nil, err
	}
	if len(list.Ideas) == 0 {
		return nil, schemaErrorf("ideas", "ideas array must be non-empty")
	}
	for i := range list.Ideas {
		idea := &list.Ideas[i]
		path := fmt.Sprintf("ideas[%d]", i)
		if idea.Title == "" {
			return nil, schemaErrorf(path, "title is required")
		}
		if idea.Description == "" {
			return nil, schemaErrorf(path, "description is required")
		}
		if idea.EstimatedTime == "" {
			return nil, schemaErrorf(path, "estimatedTime is required")
		}
		idea.ID = i + 1
	}
	return &list, nil
}
