package domain

type RoomType string

const (
	RoomStandard       RoomType = "standard"
	RoomStandardWithAC RoomType = "standardWithAC"
	RoomLuxury         RoomType = "luxury"
)

// ValidRoomType reports whether rt is one of the known room types.
func ValidRoomType(rt RoomType) bool {
	switch rt {
	case RoomStandard, RoomStandardWithAC, RoomLuxury:
		return true
	}
	return false
}

// Hotel is a bookable property with one capacity counter shared by all
// room types. BasePrice is the nightly rate for a standard room.
type Hotel struct {
	ID        string
	Name      string
	Rating    float64
	Capacity  int
	RoomTypes []RoomType
	BasePrice int64
}

// OffersRoomType reports whether the hotel rents rooms of the given type.
func (h Hotel) OffersRoomType(rt RoomType) bool {
	for _, t := range h.RoomTypes {
		if t == rt {
			return true
		}
	}
	return false
}
