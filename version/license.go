/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package version

import "fmt"

// License identifies the license a Version prints boilerplate and legal text for.
type License uint8

const (
	License_MIT License = iota
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Apache_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
	License_SIL_Open_Font_1_1
)

// separator delimits concatenated license blocks in GetLicenseLegal/GetLicenseBoiler/GetLicenseFull.
const separator = "********************************************************************************"

// Name returns the display name of the license.
func (l License) Name() string {
	switch l {
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE\nVersion 3"
	case License_GNU_Affero_GPL_v3:
		return "GNU AFFERO GENERAL PUBLIC LICENSE\nVersion 3"
	case License_GNU_Lesser_GPL_v3:
		return "GNU LESSER GENERAL PUBLIC LICENSE\nVersion 3"
	case License_Mozilla_PL_v2:
		return "Mozilla Public License, Version 2.0"
	case License_Apache_v2:
		return "Apache License, Version 2.0"
	case License_Unlicense:
		return "Free and unencumbered software"
	case License_Creative_Common_Zero_v1:
		return "Creative Commons CC0 1.0 Universal"
	case License_Creative_Common_Attribution_v4_int:
		return "Creative Commons Attribution 4.0 International"
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "Creative Commons Attribution-ShareAlike 4.0 International"
	case License_SIL_Open_Font_1_1:
		return "SIL OPEN FONT LICENSE\nVersion 1.1"
	default:
		return "MIT License"
	}
}

// boiler returns the short, project-specific notice for the license.
func (l License) boiler(pkg, desc, author, year string) string {
	switch l {
	case License_GNU_GPL_v3:
		return fmt.Sprintf("%s\n\n%s - %s\n\nCopyright (C) %s %s\n\nThis program is free software: you can redistribute it and/or modify it under the terms of the GNU General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.", l.Name(), pkg, desc, year, author)
	case License_GNU_Affero_GPL_v3:
		return fmt.Sprintf("%s\n\n%s - %s\n\nCopyright (C) %s %s\n\nThis program is free software: you can redistribute it and/or modify it under the terms of the GNU Affero General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.", l.Name(), pkg, desc, year, author)
	case License_GNU_Lesser_GPL_v3:
		return fmt.Sprintf("%s\n\n%s - %s\n\nCopyright (C) %s %s\n\nThis library is free software: you can redistribute it and/or modify it under the terms of the GNU Lesser General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.", l.Name(), pkg, desc, year, author)
	case License_Mozilla_PL_v2:
		return fmt.Sprintf("%s\n\n%s\n\nCopyright (c) %s %s\n\nThis Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0. If a copy of the MPL was not distributed with this file, you can obtain one at https://mozilla.org/MPL/2.0/.", l.Name(), pkg, year, author)
	case License_Apache_v2:
		return fmt.Sprintf("%s\n\nCopyright (c) %s %s\n\nLicensed under the Apache License, Version 2.0 (the \"License\"); you may not use this file except in compliance with the License.", l.Name(), year, author)
	case License_Unlicense:
		return "This is free and unencumbered software released into the public domain.\n\nAnyone is free to copy, modify, publish, use, compile, sell, or distribute this software, either in source code form or as a compiled binary, for any purpose, commercial or non-commercial, and by any means.\n\nFor more information, please refer to <https://unlicense.org/>"
	case License_Creative_Common_Zero_v1:
		return fmt.Sprintf("%s\n\nCopyright (c) %s %s\n\nNo Copyright. The person who associated a work with this deed has dedicated the work to the public domain by waiving all of his or her rights to the work worldwide under copyright law.", l.Name(), year, author)
	case License_Creative_Common_Attribution_v4_int:
		return fmt.Sprintf("%s\n\nCopyright (c) %s %s\n\nThis work is licensed under the Creative Commons Attribution 4.0 International License.", l.Name(), year, author)
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return fmt.Sprintf("%s\n\nCopyright (c) %s %s\n\nThis work is licensed under the Creative Commons Attribution-ShareAlike 4.0 International License (CC BY-SA), sometimes called the Share Alike license.", l.Name(), year, author)
	case License_SIL_Open_Font_1_1:
		return fmt.Sprintf("SIL Open Font License, Version 1.1\n\n%s\n\nCopyright (c) %s %s\n\nThis Font Software is licensed under the SIL Open Font License, Version 1.1.", pkg, year, author)
	default:
		return fmt.Sprintf("MIT License\n\nCopyright (c) %s %s\n\nPermission is hereby granted, free of charge, to any person obtaining a copy of this software and associated documentation files (the \"Software\"), to deal in the Software without restriction.", year, author)
	}
}

// extended returns the additional legal text appended after boiler to form the
// full legal document. Empty for licenses whose legal text equals their notice.
func (l License) extended() string {
	switch l {
	case License_GNU_GPL_v3:
		return "This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for more details.\n\nYou should have received a copy of the GNU General Public License along with this program. If not, see <https://www.gnu.org/licenses/>."
	case License_GNU_Affero_GPL_v3:
		return "This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU Affero General Public License for more details.\n\nIf your software can interact with users remotely through a computer network, you should also make sure that it provides a way for users to get its source, as required under the GNU Affero General Public License."
	case License_GNU_Lesser_GPL_v3:
		return "This library is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU Lesser General Public License for more details."
	case License_Mozilla_PL_v2:
		return "Each contributor grants a world-wide, royalty-free, non-exclusive license under intellectual property rights no greater than that granted under this License, to use, reproduce, make available, modify, display, perform, distribute, and otherwise exploit its Contributions."
	case License_Apache_v2:
		return "You may obtain a copy of the License at\n\n    http://www.apache.org/licenses/LICENSE-2.0\n\nUnless required by applicable law or agreed to in writing, software distributed under the License is distributed on an \"AS IS\" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the specific language governing permissions and limitations under the License."
	case License_Unlicense:
		return ""
	case License_Creative_Common_Zero_v1:
		return "In no way are the patent or trademark rights of any person affected by CC0, nor are the rights that other persons may have in the work or in how the work is used, such as publicity or privacy rights. Unless expressly stated otherwise, the person who associated a work with this deed makes no warranties about the work."
	case License_Creative_Common_Attribution_v4_int:
		return "Under the following terms: Attribution — You must give appropriate credit, provide a link to the license, and indicate if changes were made. No additional restrictions — You may not apply legal terms or technological measures that legally restrict others from doing anything the license permits."
	case License_Creative_Common_Attribution_Share_Alike_v4_int:
		return "Under the following terms: Attribution — You must give appropriate credit. ShareAlike — If you remix, transform, or build upon the material, you must distribute your contributions under the same license as the original."
	case License_SIL_Open_Font_1_1:
		return "PERMISSION & CONDITIONS: Permission is hereby granted, free of charge, to any person obtaining a copy of the Font Software, to use, study, copy, merge, embed, modify, redistribute, and sell modified and unmodified copies of the Font Software, subject to the conditions in the full license text."
	default:
		return "THE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT."
	}
}

// legal returns the full legal text: the notice plus any extended clauses.
func (l License) legal(pkg, desc, author, year string) string {
	b := l.boiler(pkg, desc, author, year)
	if e := l.extended(); e != "" {
		return b + "\n\n" + e
	}
	return b
}

func joinLicenseBlocks(primary string, blocks []string) string {
	out := primary
	for _, b := range blocks {
		out += "\n\n" + separator + "\n\n" + b + "\n\n" + separator
	}
	return out
}
