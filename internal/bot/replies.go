package bot

// User-facing reply strings. The bot speaks Hebrew.
const (
	replyAuthPrompt = "👋 כדי להשתמש בבוט יש לאשר גישה ליומן:\n%s\nשלח לי את הקישור המלא או את הקוד שתקבל אחרי האישור."
	replyAuthNoCode = "❌ לא נמצא קוד הרשאה בהודעה."
	replyAuthDone   = "✅ ההרשאה הושלמה! שלח את הפקודה שוב."
	replyAuthFailed = "❌ שגיאה בתהליך ההרשאה: %v"

	replyProcessing    = "🧠 מעבד את הפקודה..."
	replyUnknownLabel  = "תגית לא מוכרת. נסה אחת מ: %s"
	replyPickLabel     = "לא זיהיתי תגית. בחר אחת: %s"
	replyUnknownAction = "❌ פעולה לא מזוהה."
	replyGenericError  = "❌ שגיאה: %v"

	replyCreatedLabeled = "✅ אירוע נוצר עם התגית, צבע והזמנות נשלחו."
	replyCreated        = "✅ אירוע נוצר עם צבע והזמנות (אם קיימות)."
	replyUpdatedLabeled = "✏️ האירוע עודכן עם תגית, צבע והזמנות."
	replyUpdated        = "✏️ האירוע עודכן בהצלחה!"
	replyDeleted        = "🗑️ האירוע נמחק בהצלחה!"
	replyNoEventUpdate  = "❌ לא נמצא אירוע לעדכון."
	replyNoEventDelete  = "❌ לא נמצא אירוע למחיקה."

	replyNoEventsTomorrow = "📭 אין אירועים מחר."

	replyCalendarMenu    = "📅 בחר יומן לפי מספר:\n%s"
	replyCalendarPrimary = " (ראשי)"
	replyCalendarChosen  = "✅ היומן \"%s\" נבחר."
	replyCalendarBadPick = "❌ בחירה לא חוקית. שלח מספר בין 1 ל-%d."
	replyNoCalendars     = "❌ לא נמצאו יומנים."
)
