package models

import "time"

// Department is a reference entity used for HOD scoping.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Room is a hostel room referenced from student profiles.
type Room struct {
	ID         string    `db:"id" json:"id"`
	RoomNumber string    `db:"room_number" json:"room_number"`
	Floor      int       `db:"floor" json:"floor"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Occupied   int       `db:"occupied" json:"occupied"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
