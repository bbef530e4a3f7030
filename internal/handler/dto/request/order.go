package request

import (
	"storefront/internal/domain/order"
	"storefront/internal/usecase/commands"
)

type TransitionOrderRequest struct {
	Status         string `json:"status" binding:"required"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

func (r TransitionOrderRequest) ToInput() commands.TransitionInput {
	input := commands.TransitionInput{To: order.Status(r.Status)}
	if r.Carrier != "" || r.TrackingNumber != "" {
		input.Tracking = &order.Tracking{
			Carrier:        r.Carrier,
			TrackingNumber: r.TrackingNumber,
		}
	}
	return input
}
