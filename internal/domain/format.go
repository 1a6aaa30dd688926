package domain

// Time units used when telling the user how much stock is left.
const (
	UnitDay   = "day"
	UnitDays  = "days"
	UnitWeek  = "week"
	UnitWeeks = "weeks"
)

// UnitLabel picks the unit for "You have N <unit> of X left": weekly
// medicines count in weeks, everything else in days.
func UnitLabel(stock, intervalDays int) string {
	weekly := intervalDays == 7
	if stock == 1 {
		if weekly {
			return UnitWeek
		}
		return UnitDay
	}
	if weekly {
		return UnitWeeks
	}
	return UnitDays
}
