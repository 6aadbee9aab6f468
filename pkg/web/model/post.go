package model

type (
	PostReq struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		Password string `json:"password"`
		Content  string `json:"content"`
	}

	DeletePostReq struct {
		Password string `json:"password"`
	}

	SearchPostReq struct {
		Title string `query:"title"`
	}
)
