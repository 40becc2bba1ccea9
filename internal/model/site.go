// Package model はドメインモデルを定義する。
package model

// WildlifeSites はフォームの選択肢として提示する保護施設の一覧。
// サーバー側のバリデーションはこの一覧に限定せず、空でないsiteを受理する。
var WildlifeSites = []string{
	"Elephant Conservation and Care Centre",
	"Agra Bear Rescue Facility",
	"Bannerghatta Bear Rescue Centre",
	"Manikdoh Leopard Rescue Centre",
	"Elephant Hospital",
	"Dachigam Rescue Centre",
	"Pahalgam Rescue Centre",
	"Elephant Rehabilitation Centre",
	"Wildlife SOS Transit Facility",
	"Human Primate Conflict Mitigation Centre",
	"Van Vihar Bear Rescue Facility",
	"West Bengal Bear Rescue Centre",
}
