package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Roles    []struct {
		Authority string `json:"authority"`
	} `json:"roles"`
}

// Whoami is the identity payload of the current backend session.
type Whoami struct {
	Authenticated     bool   `json:"authenticated"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	AssignedBusId     int64  `json:"assignedBusId"`
	AssignedBusNumber string `json:"assignedBusNumber"`
	AssignedBusName   string `json:"assignedBusName"`
}
