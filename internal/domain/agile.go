package domain

// Board represents an agile board.
type Board struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
	Type string     `json:"type"`
}

// BoardPage is the paginated board listing returned by the agile API.
type BoardPage struct {
	MaxResults int     `json:"maxResults"`
	StartAt    int     `json:"startAt"`
	Total      int     `json:"total"`
	IsLast     bool    `json:"isLast"`
	Values     []Board `json:"values"`
}

// Sprint represents a sprint on an agile board.
type Sprint struct {
	ID            FlexibleID `json:"id"`
	Name          string     `json:"name"`
	State         string     `json:"state"`
	StartDate     string     `json:"startDate,omitempty"`
	EndDate       string     `json:"endDate,omitempty"`
	CompleteDate  string     `json:"completeDate,omitempty"`
	Goal          string     `json:"goal,omitempty"`
	OriginBoardID FlexibleID `json:"originBoardId,omitempty"`
}

// SprintPage is the paginated sprint listing returned by the agile API.
type SprintPage struct {
	MaxResults int      `json:"maxResults"`
	StartAt    int      `json:"startAt"`
	Total      int      `json:"total"`
	IsLast     bool     `json:"isLast"`
	Values     []Sprint `json:"values"`
}
