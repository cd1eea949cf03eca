package auth

import (
	"fmt"
	"strings"
)

// ShowCookieExtractionGuide displays step-by-step instructions for extracting the session cookie
func ShowCookieExtractionGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 SESSION COOKIE EXTRACTION GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("Harvesting a logged-in feed needs your browser session cookie.")
	fmt.Println("Follow these steps to extract it:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open the feed in your browser")
	fmt.Println("   - Go to https://www.tiktok.com")
	fmt.Println("   - Log in with your account")
	fmt.Println("   - Make sure you can see your feed")
	fmt.Println()

	fmt.Println("🔧 STEP 2: Open Developer Tools")
	fmt.Println("   • Chrome/Edge/Brave: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Firefox: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Safari: Enable Developer menu in Preferences, then Cmd+Option+I")
	fmt.Println()

	fmt.Println("🍪 STEP 3: Find the session cookie")
	fmt.Println("   1. Go to 'Application' tab (Chrome) or 'Storage' tab (Firefox)")
	fmt.Println("   2. In the left sidebar, expand 'Cookies'")
	fmt.Println("   3. Click on 'https://www.tiktok.com'")
	fmt.Println("   4. Find the 'sessionid' row and copy its value")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Copy the ENTIRE value (everything after the = sign)")
	fmt.Println("   • Don't include quotes or semicolons")
	fmt.Println("   • Session cookies expire, so you may need to refresh them periodically")
	fmt.Println("   • Use a secondary account for harvesting to protect your main account")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • This cookie gives FULL access to your account")
	fmt.Println("   • NEVER share it with anyone")
	fmt.Println("   • Store it securely (this tool encrypts it)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickExtractGuide shows a condensed version for experienced users
func ShowQuickExtractGuide() {
	fmt.Println("\n🍪 Quick Guide: F12 → Application/Storage tab → Cookies → tiktok.com → sessionid")
	fmt.Println("   Type 'help' for detailed instructions")
}
