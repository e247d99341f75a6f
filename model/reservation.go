package model

type Reservation struct {
	Id             int64  `json:"id"`
	ScheduleId     int64  `json:"scheduleId"`
	PassengerName  string `json:"passengerName"`
	PassengerEmail string `json:"passengerEmail"`
	SeatNumber     int    `json:"seatNumber"`
	BookingTime    string `json:"bookingTime"`
	PickupStopId   *int64 `json:"pickupStopId,omitempty"`
	DropStopId     *int64 `json:"dropStopId,omitempty"`
	Username       string `json:"username"`
	Paid           bool   `json:"paid"`
}

// BookingRequest is the payload of the booking endpoint.
type BookingRequest struct {
	ScheduleId     int64  `json:"scheduleId"`
	PassengerName  string `json:"passengerName"`
	PassengerEmail string `json:"passengerEmail"`
	SeatNumber     int    `json:"seatNumber"`
	PickupStopId   *int64 `json:"pickupStopId,omitempty"`
	DropStopId     *int64 `json:"dropStopId,omitempty"`
}

type PaymentRequest struct {
	ReservationId int64  `json:"reservationId"`
	Method        string `json:"method"`
	Reference     string `json:"reference"`
}

type PaymentResponse struct {
	ReservationId int64  `json:"reservationId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	Method        string `json:"method"`
	Reference     string `json:"reference"`
}

// Succeeded reports whether the backend accepted the payment.
func (p PaymentResponse) Succeeded() bool {
	return p.Status == "SUCCESS"
}
