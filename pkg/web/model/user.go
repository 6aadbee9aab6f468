package model

// 请求/响应数据结构
type (
	SignupReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role,omitempty"`
	}

	LoginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	SignupRes struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Message  string `json:"message"`
	}

	LoginRes struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Token    string `json:"token"`
	}

	UserRes struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
)
