package site

import (
	"fmt"
	"sort"
)

// Text carries the ko/en pair for one copy string
type Text struct {
	Ko string `json:"ko"`
	En string `json:"en"`
}

// Palette is the brand color set the client shell themes itself with
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// ServiceEntry is one offering on the services page
type ServiceEntry struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Profile parameterizes a brochure-site brand: every piece that used to
// vary between site builds (name, palette, copy, service list) lives here
// and is selected by configuration.
type Profile struct {
	Name      string         `json:"name"`
	Brand     string         `json:"brand"`
	BaseURL   string         `json:"base_url"`
	Palette   Palette        `json:"palette"`
	Hero      Text           `json:"hero"`
	HeroSub   Text           `json:"hero_subtitle"`
	About     Text           `json:"about"`
	NewsTitle Text           `json:"news_title"`
	Contact   Text           `json:"contact"`
	Services  []ServiceEntry `json:"services"`
	Locales   []string       `json:"locales"`
}

var profiles = map[string]Profile{
	"techflow": {
		Name:  "techflow",
		Brand: "TechFlow",
		Palette: Palette{
			Primary:   "#2563EB",
			Secondary: "#0EA5E9",
			Accent:    "#1E40AF",
		},
		Hero:      Text{Ko: "혁신적인 IT 솔루션", En: "Innovative IT Solutions"},
		HeroSub:   Text{Ko: "비즈니스의 디지털 전환을 이끄는 TechFlow와 함께 미래를 앞서가는 기술로 성공을 실현하세요", En: "Leading digital transformation with TechFlow. Achieve success with future-forward technology"},
		About:     Text{Ko: "TechFlow를 소개합니다", En: "Introducing TechFlow"},
		NewsTitle: Text{Ko: "최신 소식", En: "Latest News"},
		Contact:   Text{Ko: "문의하기", En: "Contact Us"},
		Services: []ServiceEntry{
			{Key: "web", Title: "웹 개발", Subtitle: "반응형 웹사이트 & 웹 애플리케이션"},
			{Key: "mobile", Title: "모바일 앱 개발", Subtitle: "iOS & Android 네이티브/크로스플랫폼"},
			{Key: "cloud", Title: "클라우드 솔루션", Subtitle: "AWS, Azure, GCP 클라우드 인프라"},
		},
		Locales: []string{"ko", "en"},
	},
	"greenflow": {
		Name:  "greenflow",
		Brand: "GreenFlow",
		Palette: Palette{
			Primary:   "#059669",
			Secondary: "#34D399",
			Accent:    "#065F46",
		},
		Hero:      Text{Ko: "지속 가능한 에너지 솔루션", En: "Sustainable Energy Solutions"},
		HeroSub:   Text{Ko: "친환경 기술로 더 나은 내일을 만드는 GreenFlow와 함께하세요", En: "Build a better tomorrow with GreenFlow's clean technology"},
		About:     Text{Ko: "GreenFlow를 소개합니다", En: "Introducing GreenFlow"},
		NewsTitle: Text{Ko: "새로운 소식", En: "Latest Updates"},
		Contact:   Text{Ko: "상담 신청", En: "Get in Touch"},
		Services: []ServiceEntry{
			{Key: "solar", Title: "태양광 설비", Subtitle: "상업용 및 주거용 태양광 시스템"},
			{Key: "storage", Title: "에너지 저장", Subtitle: "ESS 설계 및 구축"},
			{Key: "consulting", Title: "에너지 컨설팅", Subtitle: "탄소 중립 전환 전략"},
		},
		Locales: []string{"ko", "en"},
	},
}

// Lookup returns the named profile with the base URL filled in
func Lookup(name, baseURL string) (*Profile, error) {
	profile, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown site profile %q", name)
	}
	profile.BaseURL = baseURL
	return &profile, nil
}

// Names lists the available profile names, sorted
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
