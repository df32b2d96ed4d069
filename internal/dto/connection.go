package dto

import (
	"time"

	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/services"
)

// ConnectionDTO is one edge of the friend graph seen from the acting user
type ConnectionDTO struct {
	User      UserDTO                 `json:"user"`
	Status    models.ConnectionStatus `json:"status"`
	Outgoing  bool                    `json:"outgoing"`
	CreatedAt time.Time               `json:"created_at"`
}

// ConnectionListDTO groups friends and pending incoming requests
type ConnectionListDTO struct {
	Friends  []ConnectionDTO `json:"friends"`
	Incoming []ConnectionDTO `json:"incoming"`
}

// ToConnectionDTO converts a connection row owned by the acting user
func ToConnectionDTO(conn models.Connection) ConnectionDTO {
	return ConnectionDTO{
		User:      ToUserDTO(conn.Friend),
		Status:    conn.Status,
		Outgoing:  conn.RequestedBy == conn.UserID,
		CreatedAt: conn.CreatedAt,
	}
}

// ToIncomingDTO converts a pending request addressed to the acting user
func ToIncomingDTO(conn models.Connection) ConnectionDTO {
	return ConnectionDTO{
		User:      ToUserDTO(conn.User),
		Status:    conn.Status,
		CreatedAt: conn.CreatedAt,
	}
}

// ToConnectionListDTO converts the acting user's side of the graph
func ToConnectionListDTO(list services.ConnectionList) ConnectionListDTO {
	dto := ConnectionListDTO{
		Friends:  make([]ConnectionDTO, len(list.Friends)),
		Incoming: make([]ConnectionDTO, len(list.Incoming)),
	}
	for i, conn := range list.Friends {
		dto.Friends[i] = ToConnectionDTO(conn)
	}
	for i, conn := range list.Incoming {
		dto.Incoming[i] = ToIncomingDTO(conn)
	}
	return dto
}
