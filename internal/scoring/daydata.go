package scoring

import "strings"

// DayData is the raw daily log as the client saves it. Every leaf is a
// user-typed number that may be blank.
type DayData struct {
	Exercise  ExerciseLog  `json:"exercise"`
	Sleep     SleepLog     `json:"sleep"`
	Diet      DietLog      `json:"diet"`
	Reading   ReadingLog   `json:"reading"`
	Community CommunityLog `json:"community"`
}

type Workout struct {
	Type      string  `json:"type"`
	Minutes   Numeric `json:"minutes"`
	Seconds   Numeric `json:"seconds"`
	Calories  Numeric `json:"calories"`
	Intensity Numeric `json:"intensity"`
}

type ExerciseLog struct {
	Workouts []Workout `json:"workouts"`
	Steps    Numeric   `json:"steps"`
}

type SleepLog struct {
	Hours   Numeric `json:"hours"`
	Minutes Numeric `json:"minutes"`
}

type DietLog struct {
	CookedMeals     Numeric `json:"cookedMeals"`
	RestaurantMeals Numeric `json:"restaurantMeals"`
	Healthiness     Numeric `json:"healthiness"`
	ProteinGrams    Numeric `json:"proteinGrams"`
	WaterOunces     Numeric `json:"waterOunces"`
}

type ReadingEvent struct {
	Title           string  `json:"title"`
	Pages           Numeric `json:"pages"`
	FictionPages    Numeric `json:"fictionPages"`
	NonfictionPages Numeric `json:"nonfictionPages"`
}

// ReadingLog keeps the legacy flat page fields next to the event list.
type ReadingLog struct {
	Events          []ReadingEvent `json:"events"`
	Pages           Numeric        `json:"pages"`
	FictionPages    Numeric        `json:"fictionPages"`
	NonfictionPages Numeric        `json:"nonfictionPages"`
}

type CommunityLog struct {
	FriendCalls  Numeric `json:"friendCalls"`
	FamilyCalls  Numeric `json:"familyCalls"`
	SocialEvents Numeric `json:"socialEvents"`
}

func (w Workout) logged() bool {
	return strings.TrimSpace(w.Type) != "" || w.Minutes.Present() || w.Seconds.Present() || w.Calories.Present()
}

// WorkoutsLogged counts activities that carry a type or any measurement.
func (e ExerciseLog) WorkoutsLogged() int {
	n := 0
	for _, w := range e.Workouts {
		if w.logged() {
			n++
		}
	}
	return n
}

func (e ExerciseLog) TotalMinutes() float64 {
	var total float64
	for _, w := range e.Workouts {
		total += w.Minutes.Or(0) + w.Seconds.Or(0)/60
	}
	return total
}

func (e ExerciseLog) TotalCalories() float64 {
	var total float64
	for _, w := range e.Workouts {
		total += w.Calories.Or(0)
	}
	return total
}

func (s SleepLog) TotalHours() float64 {
	return s.Hours.Or(0) + s.Minutes.Or(0)/60
}

// CookedMealPct is the share of meals cooked at home, 0 when no meals were
// logged.
func (d DietLog) CookedMealPct() float64 {
	cooked := d.CookedMeals.Or(0)
	eaten := cooked + d.RestaurantMeals.Or(0)
	if eaten <= 0 {
		return 0
	}
	return cooked / eaten * 100
}

func pagesOf(total, fiction, nonfiction Numeric) float64 {
	if fiction.Present() || nonfiction.Present() {
		return fiction.Or(0) + nonfiction.Or(0)
	}
	return total.Or(0)
}

// TotalPages prefers the event list over the flat fields, and a
// fiction/nonfiction split over a raw total.
func (r ReadingLog) TotalPages() float64 {
	if len(r.Events) > 0 {
		var total float64
		for _, ev := range r.Events {
			total += pagesOf(ev.Pages, ev.FictionPages, ev.NonfictionPages)
		}
		return total
	}
	return pagesOf(r.Pages, r.FictionPages, r.NonfictionPages)
}
