package catalog

import (
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// SeedProducts is the initial storefront catalog.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "زيت الأرغان المغربي", Description: "زيت أرغان نقي لتغذية الشعر وإصلاح الأطراف المتقصفة.", Image: "product-1", Price: price("250"), DiscountPrice: discount("199"), Category: "زيوت الشعر"},
		{ID: 2, Name: "زيت الخروع", Description: "يقوي بصيلات الشعر ويساعد على تكثيف الرموش والحواجب.", Image: "product-2", Price: price("120"), Category: "زيوت الشعر"},
		{ID: 3, Name: "زيت جوز الهند", Description: "زيت معصور على البارد لترطيب الشعر والبشرة.", Image: "product-3", Price: price("150"), DiscountPrice: discount("130"), Category: "زيوت الشعر"},
		{ID: 4, Name: "زيت الجوجوبا", Description: "يوازن إفرازات البشرة الدهنية ويرطب البشرة الجافة.", Image: "product-4", Price: price("220"), Category: "زيوت البشرة"},
		{ID: 5, Name: "زيت ثمر الورد", Description: "غني بفيتامين سي لتفتيح البشرة وتقليل التصبغات.", Image: "product-5", Price: price("300"), DiscountPrice: discount("260"), Category: "زيوت البشرة"},
		{ID: 6, Name: "زيت اللوز الحلو", Description: "زيت خفيف لتنعيم البشرة وإزالة المكياج.", Image: "product-6", Price: price("110"), Category: "زيوت البشرة"},
		{ID: 7, Name: "زيت اللافندر العطري", Description: "زيت عطري مهدئ يساعد على الاسترخاء والنوم.", Image: "product-7", Price: price("180"), Category: "زيوت عطرية"},
		{ID: 8, Name: "زيت النعناع العطري", Description: "زيت عطري منعش لتخفيف الصداع.", Image: "product-8", Price: price("160"), DiscountPrice: discount("140"), Category: "زيوت عطرية"},
		{ID: 9, Name: "زيت الزيتون البكر", Description: "زيت زيتون بكر ممتاز للاستخدامات اليومية.", Image: "product-9", Price: price("200"), Category: "زيوت عامة"},
		{ID: 10, Name: "زيت حبة البركة", Description: "زيت حبة البركة الأصلي لدعم المناعة.", Image: "product-10", Price: price("90"), Category: "زيوت عامة"},
	}
}
