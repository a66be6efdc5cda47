package domain

import "fmt"

// WeekDevelopmentFact describes fetal development for one gestational week
type WeekDevelopmentFact struct {
	Week         int      `json:"week"`
	Size         string   `json:"size,omitempty"`
	Length       string   `json:"length,omitempty"`
	Weight       string   `json:"weight,omitempty"`
	Developments []string `json:"developments"`
	PreEmbryonic bool     `json:"pre_embryonic,omitempty"`
}

// FirstDevelopmentWeek is the first week with a table entry
const FirstDevelopmentWeek = 5

const preEmbryonicMessage = "Your baby is not yet an embryo. In the first weeks, counted from your last period, " +
	"ovulation, fertilisation and implantation take place. Development details start from week 5."

// LookupWeekDevelopment returns the development fact for a gestational week.
// Weeks up to 4 return the pre-embryonic fact; weeks past the table return
// ErrNotFound so the caller can decide on a default.
func LookupWeekDevelopment(week int) (WeekDevelopmentFact, error) {
	if week < 0 {
		return WeekDevelopmentFact{}, fmt.Errorf("%w: week %d is negative", ErrInvalidInput, week)
	}
	if week < FirstDevelopmentWeek {
		return WeekDevelopmentFact{
			Week:         week,
			PreEmbryonic: true,
			Developments: []string{preEmbryonicMessage},
		}, nil
	}

	idx := week - FirstDevelopmentWeek
	if idx >= len(weekDevelopmentTable) {
		return WeekDevelopmentFact{}, fmt.Errorf("%w: no development data for week %d", ErrNotFound, week)
	}

	fact := weekDevelopmentTable[idx]
	fact.Developments = append([]string(nil), fact.Developments...)
	return fact, nil
}

// weekDevelopmentTable holds weeks 5 to 40, indexed by week-5
var weekDevelopmentTable = []WeekDevelopmentFact{
	{Week: 5, Size: "sesame seed", Length: "2 mm", Weight: "< 1 g", Developments: []string{
		"The neural tube, which becomes the brain and spinal cord, begins to form",
		"The heart starts as a simple tube",
	}},
	{Week: 6, Size: "lentil", Length: "4 mm", Weight: "< 1 g", Developments: []string{
		"A heartbeat may be visible on ultrasound",
		"Buds for arms and legs appear",
	}},
	{Week: 7, Size: "blueberry", Length: "1 cm", Weight: "< 1 g", Developments: []string{
		"The brain grows rapidly",
		"Hands and feet begin as paddle shapes",
	}},
	{Week: 8, Size: "raspberry", Length: "1.6 cm", Weight: "1 g", Developments: []string{
		"Fingers and toes start to form",
		"Breathing tubes extend from the throat to the developing lungs",
	}},
	{Week: 9, Size: "cherry", Length: "2.3 cm", Weight: "2 g", Developments: []string{
		"Eyelids and ears take shape",
		"All essential organs have begun to form",
	}},
	{Week: 10, Size: "strawberry", Length: "3.1 cm", Weight: "4 g", Developments: []string{
		"The embryo is now called a fetus",
		"Bones and cartilage are forming",
	}},
	{Week: 11, Size: "fig", Length: "4.1 cm", Weight: "7 g", Developments: []string{
		"Tooth buds appear",
		"Hair follicles start forming",
	}},
	{Week: 12, Size: "lime", Length: "5.4 cm", Weight: "14 g", Developments: []string{
		"Reflexes develop; the fetus may open and close its fingers",
		"Kidneys begin producing urine",
	}},
	{Week: 13, Size: "lemon", Length: "7.4 cm", Weight: "23 g", Developments: []string{
		"Vocal cords begin to develop",
		"Intestines move into the abdomen",
	}},
	{Week: 14, Size: "peach", Length: "8.7 cm", Weight: "43 g", Developments: []string{
		"Facial muscles allow squinting and frowning",
		"Fine hair called lanugo starts to cover the body",
	}},
	{Week: 15, Size: "apple", Length: "10.1 cm", Weight: "70 g", Developments: []string{
		"Bones continue to harden",
		"The fetus can sense light through the eyelids",
	}},
	{Week: 16, Size: "avocado", Length: "11.6 cm", Weight: "100 g", Developments: []string{
		"Eyes can move slowly",
		"The heart pumps about 25 litres of blood a day",
	}},
	{Week: 17, Size: "turnip", Length: "13 cm", Weight: "140 g", Developments: []string{
		"Fat stores begin to develop under the skin",
		"The skeleton changes from cartilage to bone",
	}},
	{Week: 18, Size: "bell pepper", Length: "14.2 cm", Weight: "190 g", Developments: []string{
		"Ears are in their final position and may hear sounds",
		"First movements may be felt",
	}},
	{Week: 19, Size: "mango", Length: "15.3 cm", Weight: "240 g", Developments: []string{
		"A protective coating called vernix covers the skin",
		"Sensory areas of the brain develop",
	}},
	{Week: 20, Size: "banana", Length: "25.6 cm", Weight: "300 g", Developments: []string{
		"Halfway point; length is now measured head to heel",
		"The fetus swallows amniotic fluid",
	}},
	{Week: 21, Size: "carrot", Length: "26.7 cm", Weight: "360 g", Developments: []string{
		"Movements become stronger and more coordinated",
		"Bone marrow starts making blood cells",
	}},
	{Week: 22, Size: "papaya", Length: "27.8 cm", Weight: "430 g", Developments: []string{
		"Lips, eyelids and eyebrows are more distinct",
		"The grasp reflex develops",
	}},
	{Week: 23, Size: "grapefruit", Length: "28.9 cm", Weight: "500 g", Developments: []string{
		"Rapid eye movements begin",
		"Blood vessels in the lungs develop to prepare for breathing",
	}},
	{Week: 24, Size: "corn cob", Length: "30 cm", Weight: "600 g", Developments: []string{
		"Lungs begin producing surfactant",
		"Taste buds are forming",
	}},
	{Week: 25, Size: "cauliflower", Length: "34.6 cm", Weight: "660 g", Developments: []string{
		"The fetus responds to familiar voices",
		"Hands are fully developed",
	}},
	{Week: 26, Size: "lettuce head", Length: "35.6 cm", Weight: "760 g", Developments: []string{
		"Eyes begin to open",
		"Brain wave activity for hearing and vision increases",
	}},
	{Week: 27, Size: "cabbage", Length: "36.6 cm", Weight: "875 g", Developments: []string{
		"Sleep and wake cycles become regular",
		"Lungs and nervous system keep maturing",
	}},
	{Week: 28, Size: "eggplant", Length: "37.6 cm", Weight: "1 kg", Developments: []string{
		"Eyelashes have grown",
		"The fetus can blink",
	}},
	{Week: 29, Size: "butternut squash", Length: "38.6 cm", Weight: "1.15 kg", Developments: []string{
		"Muscles and lungs continue to mature",
		"The head grows to make room for the brain",
	}},
	{Week: 30, Size: "cucumber", Length: "39.9 cm", Weight: "1.3 kg", Developments: []string{
		"Lanugo begins to disappear",
		"Red blood cells now form in the bone marrow",
	}},
	{Week: 31, Size: "coconut", Length: "41.1 cm", Weight: "1.5 kg", Developments: []string{
		"The fetus can turn its head from side to side",
		"Fat layers fill out the skin",
	}},
	{Week: 32, Size: "squash", Length: "42.4 cm", Weight: "1.7 kg", Developments: []string{
		"Toenails and fingernails are visible",
		"Practice breathing movements increase",
	}},
	{Week: 33, Size: "pineapple", Length: "43.7 cm", Weight: "1.9 kg", Developments: []string{
		"Bones harden except for the skull",
		"The immune system develops",
	}},
	{Week: 34, Size: "cantaloupe", Length: "45 cm", Weight: "2.1 kg", Developments: []string{
		"The central nervous system is maturing",
		"Lungs are nearly fully developed",
	}},
	{Week: 35, Size: "honeydew melon", Length: "46.2 cm", Weight: "2.4 kg", Developments: []string{
		"Kidneys are fully developed",
		"Most growth now is weight gain",
	}},
	{Week: 36, Size: "romaine lettuce", Length: "47.4 cm", Weight: "2.6 kg", Developments: []string{
		"The fetus may settle head-down",
		"Digestive system is ready, though unused",
	}},
	{Week: 37, Size: "swiss chard", Length: "48.6 cm", Weight: "2.9 kg", Developments: []string{
		"Considered early term",
		"Practice of sucking and grasping continues",
	}},
	{Week: 38, Size: "leek", Length: "49.8 cm", Weight: "3.1 kg", Developments: []string{
		"Organs are ready to function outside the womb",
		"Vernix begins to shed",
	}},
	{Week: 39, Size: "mini watermelon", Length: "50.7 cm", Weight: "3.3 kg", Developments: []string{
		"Full term",
		"The chest becomes more prominent",
	}},
	{Week: 40, Size: "small pumpkin", Length: "51.2 cm", Weight: "3.5 kg", Developments: []string{
		"Due date week",
		"The baby is ready to be born",
	}},
}
