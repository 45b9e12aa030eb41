package listing

import "strings"

// Field names a dataset column. The string value is the CSV header.
type Field string

const (
	City              Field = "city"
	Price             Field = "realSum"
	RoomType          Field = "room_type"
	RoomShared        Field = "room_shared"
	RoomPrivate       Field = "room_private"
	HostIsSuperhost   Field = "host_is_superhost"
	PersonCapacity    Field = "person_capacity"
	Multi             Field = "multi"
	Biz               Field = "biz"
	CleanlinessRating Field = "cleanliness_rating"
	GuestSatisfaction Field = "guest_satisfaction_overall"
	Bedrooms          Field = "bedrooms"
	Dist              Field = "dist"
	MetroDist         Field = "metro_dist"
	AttrIndex         Field = "attr_index"
	RestIndex         Field = "rest_index"
	AttrIndexNorm     Field = "attr_index_norm"
	RestIndexNorm     Field = "rest_index_norm"
	Lat               Field = "lat"
	Lng               Field = "lng"
	DayStatus         Field = "day_status"
)

// NumericFields are averaged into a city summary. Booleans count as 0/1.
var NumericFields = []Field{
	Price, RoomShared, RoomPrivate, HostIsSuperhost, PersonCapacity, Multi, Biz,
	CleanlinessRating, GuestSatisfaction, Bedrooms, Dist, MetroDist,
	AttrIndex, RestIndex, AttrIndexNorm, RestIndexNorm, Lat, Lng,
}

// TooltipFields is the default tooltip allow-list.
var TooltipFields = []Field{
	Price, RoomType, RoomShared, RoomPrivate, PersonCapacity, HostIsSuperhost,
	CleanlinessRating, GuestSatisfaction, Bedrooms, Dist, MetroDist, AttrIndex, RestIndex,
}

// Humanize turns a column name into a display label:
// "guest_satisfaction_overall" -> "Guest Satisfaction Overall".
func (f Field) Humanize() string {
	words := strings.Fields(strings.ReplaceAll(string(f), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
